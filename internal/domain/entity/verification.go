package entity

// CodePurpose names which verification workflow a code belongs to.
type CodePurpose string

const (
	CodePurposeEmailConfirmation CodePurpose = "email_confirmation"
	CodePurposePasswordReset     CodePurpose = "password_reset"
)

// EmailConfirmationSlot addresses the email-confirmation code on a user.
func EmailConfirmationSlot(u *User) **VerificationCode {
	return &u.EmailConfirmation
}

// PasswordResetSlot addresses the password-reset code on a user.
func PasswordResetSlot(u *User) **VerificationCode {
	return &u.PasswordReset
}
