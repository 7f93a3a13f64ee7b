package validation

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys double as the English text.
const (
	msgRequired        = "%s is required"
	msgPhoneDigits     = "%s must contain 9 to 11 digits"
	msgEmailFormat     = "%s is not a valid email address"
	msgMinLength       = "%s must be at least %d characters"
	msgOutOfRange      = "%s must be between %v and %v %s"
	msgUnknownField    = "Unknown field %s"
	msgDueTooEarly     = "Due date must be on or after %s"
	msgReturnNotAfter  = "Return date must be after the due date"
	msgReturnTooLate   = "Return date must be no later than %s"
	msgReturnNeedsDue  = "Choose a due date before the return date"
	msgInvalidDateText = "%s is not a valid date"
	msgReturnCleared   = "The return date no longer fits the new due date, please choose it again"
)

var contactLabels = map[string]map[language.Tag]string{
	"phone":       {language.English: "Phone number", language.Vietnamese: "Số điện thoại"},
	"email":       {language.English: "Email", language.Vietnamese: "Email"},
	"address":     {language.English: "Address", language.Vietnamese: "Địa chỉ"},
	"title":       {language.English: "Title", language.Vietnamese: "Tiêu đề"},
	"description": {language.English: "Description", language.Vietnamese: "Mô tả"},
	"dueDate":     {language.English: "Due date", language.Vietnamese: "Ngày nhận"},
	"returnDate":  {language.English: "Return date", language.Vietnamese: "Ngày trả"},
}

func init() {
	vi := language.Vietnamese
	_ = message.SetString(vi, msgRequired, "Vui lòng nhập %s")
	_ = message.SetString(vi, msgPhoneDigits, "%s phải có từ 9 đến 11 chữ số")
	_ = message.SetString(vi, msgEmailFormat, "%s không đúng định dạng")
	_ = message.SetString(vi, msgMinLength, "%s phải có ít nhất %d ký tự")
	_ = message.SetString(vi, msgOutOfRange, "%s phải nằm trong khoảng %v đến %v %s")
	_ = message.SetString(vi, msgUnknownField, "Trường %s không hợp lệ")
	_ = message.SetString(vi, msgDueTooEarly, "Ngày nhận phải từ %s trở đi")
	_ = message.SetString(vi, msgReturnNotAfter, "Ngày trả phải sau ngày nhận")
	_ = message.SetString(vi, msgReturnTooLate, "Ngày trả không được muộn hơn %s")
	_ = message.SetString(vi, msgReturnNeedsDue, "Vui lòng chọn ngày nhận trước ngày trả")
	_ = message.SetString(vi, msgInvalidDateText, "%s không phải là ngày hợp lệ")
	_ = message.SetString(vi, msgReturnCleared, "Ngày trả không còn phù hợp với ngày nhận mới, vui lòng chọn lại")
}

// matchLocale maps a LOCALE value ("vi", "vi-VN", "en") to a supported tag.
func matchLocale(locale string) language.Tag {
	matcher := language.NewMatcher([]language.Tag{language.English, language.Vietnamese})
	tag, _ := language.MatchStrings(matcher, locale)
	base, _ := tag.Base()
	if base.String() == "vi" {
		return language.Vietnamese
	}
	return language.English
}

func (v *Validator) contactLabel(field string) string {
	if labels, ok := contactLabels[field]; ok {
		if l, ok := labels[v.tag]; ok {
			return l
		}
		return labels[language.English]
	}
	return field
}
