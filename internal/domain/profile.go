package domain

// Theme preferences stored on a profile.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Profile holds the user-editable preferences of a session.
type Profile struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	AvatarURL       string `json:"avatar_url"`
	DefaultCurrency string `json:"default_currency"`
	ThemePreference string `json:"theme_preference"`
}

// Dark reports whether the profile asks for the dark theme.
func (p Profile) Dark() bool {
	return p.ThemePreference == ThemeDark
}

// ProfileUpdate is a partial profile; nil fields are left untouched.
type ProfileUpdate struct {
	Email           *string `json:"email,omitempty"`
	FullName        *string `json:"full_name,omitempty"`
	AvatarURL       *string `json:"avatar_url,omitempty"`
	DefaultCurrency *string `json:"default_currency,omitempty"`
	ThemePreference *string `json:"theme_preference,omitempty"`
}

// Apply merges the non-nil fields of u into p.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	if u.DefaultCurrency != nil {
		p.DefaultCurrency = *u.DefaultCurrency
	}
	if u.ThemePreference != nil {
		p.ThemePreference = *u.ThemePreference
	}
	return p
}

// Empty reports whether the update carries no field.
func (u ProfileUpdate) Empty() bool {
	return u.Email == nil && u.FullName == nil && u.AvatarURL == nil &&
		u.DefaultCurrency == nil && u.ThemePreference == nil
}

// DefaultProfile 演示模式下合成的默认资料
func DefaultProfile(id, email string) Profile {
	if email == "" {
		email = "dev@example.com"
	}
	return Profile{
		ID:              id,
		Email:           email,
		FullName:        "Usuário Dev",
		DefaultCurrency: "BRL",
		ThemePreference: ThemeDark,
	}
}
