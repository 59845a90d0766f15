package middleware

import (
	"context"
	"net/http"

	"jobportal_backend/pkg/contextkeys"

	"gorm.io/gorm"
)

func contextWithDB(req *http.Request, db *gorm.DB) context.Context {
	return context.WithValue(req.Context(), contextkeys.DBContextKey, db)
}
