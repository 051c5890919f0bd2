package session

import "errors"

var (
	ErrNotFound       = errors.New("session not found")
	ErrRecordNotFound = errors.New("record not found")
)

// NotFoundMessage is shown when a meeting id is not in the uploaded store.
func NotFoundMessage(id string) string {
	return "数据库中未找到 ID: " + id
}
