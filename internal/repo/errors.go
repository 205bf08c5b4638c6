package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"store-rating/internal/domain"
)

// translate 记录不存在 → NotFound，唯一键冲突 → Conflict，其余原样返回
func translate(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(notFound)
	case isDupKey(err):
		return &domain.Error{Kind: domain.KindConflict, Msg: conflict, Err: err}
	default:
		return err
	}
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 未开启 TranslateError 的连接兜底
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
