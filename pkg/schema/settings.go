package schema

// Settings is the administrator's preferences document. It is the only
// mutable state served by the panel.
type Settings struct {
	Theme         string               `json:"theme" yaml:"theme" binding:"required,oneof=light dark"`
	Notifications NotificationSettings `json:"notifications" yaml:"notifications"`
	Profile       ProfileSettings      `json:"profile" yaml:"profile"`
	Security      SecuritySettings     `json:"security" yaml:"security"`
}

// NotificationSettings toggles delivery channels.
type NotificationSettings struct {
	Email bool `json:"email" yaml:"email"`
	Push  bool `json:"push" yaml:"push"`
	SMS   bool `json:"sms" yaml:"sms"`
}

// ProfileSettings describes the administrator.
type ProfileSettings struct {
	Name     string `json:"name" yaml:"name" binding:"required"`
	Email    string `json:"email" yaml:"email" binding:"required,email"`
	Language string `json:"language" yaml:"language" binding:"required,oneof=ru en"`
	Timezone string `json:"timezone" yaml:"timezone" binding:"required,oneof=Europe/Moscow Asia/Yekaterinburg Asia/Novosibirsk Asia/Vladivostok"`
}

// SecuritySettings holds account policy. PasswordAge is in days, 0 disables
// rotation.
type SecuritySettings struct {
	TwoFactor   bool `json:"two_factor" yaml:"two_factor"`
	PasswordAge int  `json:"password_age" yaml:"password_age" binding:"min=0,max=365"`
}

// DefaultSettings returns the factory preferences used on first start and by
// a reset.
func DefaultSettings() Settings {
	return Settings{
		Theme: "light",
		Notifications: NotificationSettings{
			Email: true,
			Push:  true,
			SMS:   false,
		},
		Profile: ProfileSettings{
			Name:     "Администратор",
			Email:    "admin@fokus.ru",
			Language: "ru",
			Timezone: "Europe/Moscow",
		},
		Security: SecuritySettings{
			TwoFactor:   false,
			PasswordAge: 90,
		},
	}
}
