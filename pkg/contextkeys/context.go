package contextkeys

type contextKey string

// DBContextKey - ключ для *gorm.DB (или открытой транзакции) в context запроса и gin.Context
const DBContextKey = contextKey("db")
