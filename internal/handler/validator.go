package handler

import (
	"errors"
	"strings"

	zhlocale "github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zhtranslations "github.com/go-playground/validator/v10/translations/zh"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	locale := zhlocale.New()
	uni := ut.New(locale, locale)
	translator, _ = uni.GetTranslator("zh")
	_ = zhtranslations.RegisterDefaultTranslations(validate, translator)
}

// translateError 将校验错误翻译为中文提示
func translateError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, fieldError.Translate(translator))
	}
	return strings.Join(messages, "; ")
}
