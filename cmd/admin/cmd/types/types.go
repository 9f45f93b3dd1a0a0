// cmd/admin/cmd/types/types.go
package types

// ContextKey — тип ключей контекста, передаваемых между командами CLI.
type ContextKey string

// AdminAppKey — ключ, под которым HTTP-клиент сервера лежит в контексте команды.
const AdminAppKey ContextKey = "admin-app"
