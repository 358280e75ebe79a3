// Package chat 实现实时聊天与在线状态的核心服务层
// validator.go
// socket 事件载荷的绑定与校验
// gin 只校验 HTTP 请求体，socket 事件载荷走不到 gin 绑定，
// 这里直接使用 validator 完成等价校验，tag 沿用 binding 以保持
// request 结构体与 HTTP 层写法一致
package chat

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"yuanfen_chat_server/pkg/errorx"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New()
	validate.SetTagName("binding")

	// 错误消息里使用 json 字段名而非 Go 字段名
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
}

// bindPayload 把事件载荷绑定到 request 结构体并校验
// 载荷来自 socket.io 解码后的 map，经 json 往返完成类型转换；
// 任何绑定或校验失败都归为参数错误
func bindPayload(payload map[string]any, obj any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, errorx.ErrInvalidParam.Msg)
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return errorx.ErrInvalidParam
	}
	if err := validate.Struct(obj); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return errorx.New(errorx.CodeInvalidParam, errs[0].Translate(trans))
		}
		return errorx.ErrInvalidParam
	}
	return nil
}
