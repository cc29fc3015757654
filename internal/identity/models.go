// models.go — структуры запросов и ответов GoTrue-совместимого провайдера.
package identity

// TokenResponse — ответ на password и refresh_token grant.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// User — пользователь провайдера идентификации.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// FullName возвращает полное имя из метаданных пользователя.
func (u *User) FullName() string {
	if v, ok := u.UserMetadata["full_name"].(string); ok {
		return v
	}
	return ""
}

// Role возвращает роль из метаданных пользователя.
func (u *User) Role() string {
	if v, ok := u.UserMetadata["role"].(string); ok {
		return v
	}
	return ""
}

// passwordGrantRequest — тело запроса password grant.
type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshGrantRequest — тело запроса refresh_token grant.
type refreshGrantRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// signUpRequest — тело запроса регистрации.
type signUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// apiError — тело ошибки провайдера. Разные версии возвращают
// описание в разных полях, поэтому читаем все.
type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

// text возвращает первое непустое описание ошибки.
func (e *apiError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}
