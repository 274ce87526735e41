// Package errors はモデル読み込みと推論のエラーハンドリングと警告システムを提供します。
// 失敗の種類ごとに構造化されたエラー型を持ち、cockroachdb/errors によるスタックトレースと
// zerolog による構造化ログ出力をサポートします。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("xgbpredictor-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// これにより、DecodeWarningなどのカスタム警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// DecodeWarning はモデルの読み込みは継続できるが、ファイルの内容が期待と異なる場合の警告です。
type DecodeWarning struct {
	Op      string
	Message string
}

func (w *DecodeWarning) Error() string {
	return fmt.Sprintf("%s: %s", w.Op, w.Message)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *DecodeWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Str("message", w.Message).
		Str("type", "DecodeWarning")
}

// NewDecodeWarning は新しいDecodeWarningを作成します。
func NewDecodeWarning(op, message string) *DecodeWarning {
	return &DecodeWarning{Op: op, Message: message}
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrTruncated は要求されたバイト数がストリームに残っていない場合のエラーです。
	ErrTruncated = New("truncated model stream")

	// ErrUnsupportedBooster は未知のブースター名の場合のエラーです。
	ErrUnsupportedBooster = New("unsupported booster kind")

	// ErrUnsupportedObjective は未知の目的関数名の場合のエラーです。
	ErrUnsupportedObjective = New("unsupported objective")

	// ErrInvalidUTF8 は長さ付き文字列がUTF-8として不正な場合のエラーです。
	ErrInvalidUTF8 = New("invalid utf-8")

	// ErrStructural はモデル構造の不整合や呼び出し契約違反のエラーです。
	ErrStructural = New("structural inconsistency")

	// ErrUnsupportedFormat は認識できるが対応していないヘッダ形式のエラーです。
	ErrUnsupportedFormat = New("unsupported model format")
)

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// TruncatedError はストリームの残りが要求より短い場合のエラーです。
// 壊れたファイルや途中までのファイルは想定内の外部入力なので、panic ではなくエラーとして返します。
type TruncatedError struct {
	Op     string
	Offset int64 // 読み込み開始位置（バイト）
	Want   int64 // 要求したバイト数
	Got    int64 // 実際に読めたバイト数
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("xgbpredictor: %s: truncated at offset %d: want %d bytes, got %d", e.Op, e.Offset, e.Want, e.Got)
}

// Is は ErrTruncated と一致します。
func (e *TruncatedError) Is(target error) bool { return target == ErrTruncated }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *TruncatedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int64("offset", e.Offset).
		Int64("want", e.Want).
		Int64("got", e.Got).
		Str("type", "TruncatedError")
}

// NewTruncatedError は新しいTruncatedErrorを作成し、スタックトレースを付与します。
func NewTruncatedError(op string, offset, want, got int64) error {
	err := &TruncatedError{Op: op, Offset: offset, Want: want, Got: got}
	return errors.WithStack(err)
}

// UnsupportedBoosterError はブースター名が gbtree / gblinear / dart のいずれでもない場合のエラーです。
type UnsupportedBoosterError struct {
	Name string
}

func (e *UnsupportedBoosterError) Error() string {
	return fmt.Sprintf("xgbpredictor: unsupported booster kind %q", e.Name)
}

// Is は ErrUnsupportedBooster と一致します。
func (e *UnsupportedBoosterError) Is(target error) bool { return target == ErrUnsupportedBooster }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedBoosterError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("name", e.Name).
		Str("type", "UnsupportedBoosterError")
}

// NewUnsupportedBoosterError は新しいUnsupportedBoosterErrorを作成し、スタックトレースを付与します。
func NewUnsupportedBoosterError(name string) error {
	return errors.WithStack(&UnsupportedBoosterError{Name: name})
}

// UnsupportedObjectiveError は目的関数名が既知の表に存在しない場合のエラーです。
type UnsupportedObjectiveError struct {
	Name string
}

func (e *UnsupportedObjectiveError) Error() string {
	return fmt.Sprintf("xgbpredictor: unsupported objective %q", e.Name)
}

// Is は ErrUnsupportedObjective と一致します。
func (e *UnsupportedObjectiveError) Is(target error) bool { return target == ErrUnsupportedObjective }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedObjectiveError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("name", e.Name).
		Str("type", "UnsupportedObjectiveError")
}

// NewUnsupportedObjectiveError は新しいUnsupportedObjectiveErrorを作成し、スタックトレースを付与します。
func NewUnsupportedObjectiveError(name string) error {
	return errors.WithStack(&UnsupportedObjectiveError{Name: name})
}

// InvalidUTF8Error は長さ付き文字列のバイト列がUTF-8として不正な場合のエラーです。
type InvalidUTF8Error struct {
	Op     string
	Length int
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("xgbpredictor: %s: %d-byte string is not valid utf-8", e.Op, e.Length)
}

// Is は ErrInvalidUTF8 と一致します。
func (e *InvalidUTF8Error) Is(target error) bool { return target == ErrInvalidUTF8 }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidUTF8Error) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("length", e.Length).
		Str("type", "InvalidUTF8Error")
}

// NewInvalidUTF8Error は新しいInvalidUTF8Errorを作成し、スタックトレースを付与します。
func NewInvalidUTF8Error(op string, length int) error {
	return errors.WithStack(&InvalidUTF8Error{Op: op, Length: length})
}

// StructuralError はモデル構造の不整合（範囲外の子ノード、巡回する木など）や、
// 推論時の呼び出し契約違反（多出力モデルへの PredictSingle など）を表します。
type StructuralError struct {
	Op     string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("xgbpredictor: %s: %s", e.Op, e.Reason)
}

// Is は ErrStructural と一致します。
func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *StructuralError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Str("type", "StructuralError")
}

// NewStructuralError は新しいStructuralErrorを作成し、スタックトレースを付与します。
func NewStructuralError(op, reason string) error {
	return errors.WithStack(&StructuralError{Op: op, Reason: reason})
}

// NewStructuralErrorf はフォーマット文字列から StructuralError を作成します。
func NewStructuralErrorf(op, format string, args ...interface{}) error {
	return NewStructuralError(op, fmt.Sprintf(format, args...))
}

// UnsupportedFormatError はヘッダは認識できたが、その形式（例: xgboost4j-spark）に対応していない場合のエラーです。
type UnsupportedFormatError struct {
	Dialect string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("xgbpredictor: unsupported model format: %s", e.Dialect)
}

// Is は ErrUnsupportedFormat と一致します。
func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedFormatError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("dialect", e.Dialect).
		Str("type", "UnsupportedFormatError")
}

// NewUnsupportedFormatError は新しいUnsupportedFormatErrorを作成し、スタックトレースを付与します。
func NewUnsupportedFormatError(dialect string) error {
	return errors.WithStack(&UnsupportedFormatError{Dialect: dialect})
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("xgbpredictor: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}
