package profileservice

// Profile профиль пользователя в управляемом бэкенде
type Profile struct {
	ID        string  `json:"id"`
	Name      string  `json:"nome"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	CompanyID *string `json:"company_id"`
}

// DisplayName имя для снимка в бронировании; пустое имя заменяется email
func (p *Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}
