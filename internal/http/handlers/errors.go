// Package handlers – error codes
//
// Stable, machine-readable codes carried in every error envelope. Generic
// codes mirror HTTP semantics; the rest name a domain failure the status
// alone cannot express. Clients branch on code, and show message (Persian,
// user-facing) as is.
//
//	{
//	  "success": false,
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "invalid_email",
//	  "message": "لطفاً یک ایمیل معتبر وارد کنید."
//	}
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeInvalidEmail       = "invalid_email"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodePasswordPolicy     = "password_policy"
	ErrCodeWrongPassword      = "wrong_password"
	ErrCodeInvalidCoordinates = "invalid_coordinates"
	ErrCodeUpstream           = "upstream_error"
	ErrCodeLookupFailed       = "lookup_failed"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
	ErrCodeValidation         = "validation_failed"
	ErrCodeSlugTaken          = "slug_taken"
)

// User-facing messages.
const (
	msgNotFound           = "صفحه مورد نظر یافت نشد"
	msgInternal           = "خطای داخلی سرور"
	msgInvalidEmail       = "لطفاً یک ایمیل معتبر وارد کنید."
	msgAlreadySubscribed  = "این ایمیل قبلاً در خبرنامه ثبت شده است."
	msgSubscribed         = "با موفقیت در خبرنامه وام‌گرد عضو شدید!"
	msgSubscribeFailed    = "خطا در ثبت ایمیل. لطفاً دوباره تلاش کنید."
	msgInvalidCredentials = "نام کاربری یا رمز عبور اشتباه است"
	msgPasswordMismatch   = "رمز عبور جدید و تکرار آن مطابقت ندارند"
	msgPasswordTooShort   = "رمز عبور جدید باید حداقل ۶ کاراکتر باشد"
	msgWrongPassword      = "رمز عبور فعلی اشتباه است"
	msgPasswordChanged    = "رمز عبور با موفقیت تغییر کرد"
	msgSubscriberDeleted  = "اشتراک حذف شد"
	msgInvalidCoordinates = "مختصات نامعتبر است"
	msgMapUpstream        = "خطا در ارتباط با سرور نقشه"
	msgBranchLookup       = "خطا در جستجوی شعب"
	msgBadRequest         = "درخواست نامعتبر است"
	msgSlugTaken          = "این اسلاگ قبلاً استفاده شده است"
	msgContentDeleted     = "با موفقیت حذف شد"
)
