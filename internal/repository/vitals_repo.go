package repository

import (
	"context"
	"time"

	"healthvault-data/internal/domain"
)

// VitalsRepository 体征观察Repository接口
// 同一用户每天一条记录，重复写入按日期覆盖
type VitalsRepository interface {
	// UpsertObservation 按 (user_id, observed_on) 幂等写入
	UpsertObservation(ctx context.Context, userID string, record *domain.VitalSignRecord) (string, error)
	// ListObservations 按观察日期升序（趋势检测要求时间正序）
	ListObservations(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.VitalSignRecord, error)
	DeleteObservation(ctx context.Context, userID string, observedOn time.Time) error
}
