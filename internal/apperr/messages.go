package apperr

import (
	"golang.org/x/text/language"
)

var supported = []language.Tag{language.Vietnamese, language.English}

var matcher = language.NewMatcher(supported)

var messages = map[language.Tag]map[Code]string{
	language.Vietnamese: {
		CodePermissionDenied: "Bạn không có quyền thực hiện thao tác này.",
		CodeNotFound:         "Không tìm thấy dữ liệu.",
		CodeValidation:       "Dữ liệu không hợp lệ.",
		CodeUpstream:         "Dịch vụ tạm thời không khả dụng, vui lòng thử lại sau.",
		CodeUnauthenticated:  "Vui lòng đăng nhập lại.",
		CodeRateLimited:      "Quá nhiều yêu cầu, vui lòng thử lại sau.",
		CodeInternal:         "Đã xảy ra lỗi, vui lòng thử lại.",
	},
	language.English: {
		CodePermissionDenied: "You are not allowed to perform this action.",
		CodeNotFound:         "The requested item was not found.",
		CodeValidation:       "The submitted data is invalid.",
		CodeUpstream:         "The service is temporarily unavailable, please retry later.",
		CodeUnauthenticated:  "Please sign in again.",
		CodeRateLimited:      "Too many requests, please retry later.",
		CodeInternal:         "Something went wrong, please retry.",
	},
}

// Language picks the supported language best matching an Accept-Language header.
// Vietnamese is the fallback.
func Language(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.Vietnamese
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// Message returns the localized user facing message for code.
func Message(lang language.Tag, code Code) string {
	byCode, ok := messages[lang]
	if !ok {
		byCode = messages[language.Vietnamese]
	}
	if msg, found := byCode[code]; found {
		return msg
	}
	return byCode[CodeInternal]
}
