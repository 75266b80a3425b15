package nostd

import (
	"errors"
	"strings"

	"github.com/go-orz/orz"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zhtrans "github.com/go-playground/validator/v10/translations/zh"
)

// CustomValidator echo请求参数校验器，校验消息翻译为中文
type CustomValidator struct {
	Validator *validator.Validate
	trans     ut.Translator
}

// TransInit 初始化中文翻译器
func (cv *CustomValidator) TransInit() error {
	zhLocale := zh.New()
	uni := ut.New(zhLocale, zhLocale)
	trans, ok := uni.GetTranslator("zh")
	if !ok {
		return errors.New("failed to get zh translator")
	}
	cv.trans = trans
	return zhtrans.RegisterDefaultTranslations(cv.Validator, trans)
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.Validator.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			messages := make([]string, 0, len(errs))
			for _, e := range errs {
				messages = append(messages, e.Translate(cv.trans))
			}
			return orz.NewError(10400, strings.Join(messages, "; "))
		}
		return err
	}
	return nil
}
