// Пакет rbac — роли пользователей и проверки привилегий.
// Роль у пользователя ровно одна, хранится в профиле; иерархия
// используется только там, где нужен «высший уровень» (site-access gate).
package rbac

// Роли в порядке возрастания привилегий.
const (
	RoleWorker  = "worker"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// roleWeight — вес роли для сравнения.
// Чем выше вес, тем больше привилегий.
var roleWeight = map[string]int{
	RoleWorker:  1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}

// HasAnyRole проверяет, входит ли роль в набор допустимых.
func HasAnyRole(role string, allowed ...string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// AtLeast сравнивает роли по весу: true если role не ниже minimum.
// Неизвестные роли имеют вес 0 и не проходят ни одну проверку.
func AtLeast(role, minimum string) bool {
	return roleWeight[role] >= roleWeight[minimum]
}
