package repositories

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// isUUID: id из пути, который не uuid, ни с одной строкой не совпадет,
// а postgres на нем падает с invalid input syntax
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func onlyUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}

// isUniqueViolation понимает и переведенную gorm ошибку (TranslateError), и сырой SQLSTATE 23505
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "SQLSTATE 23505")
}
