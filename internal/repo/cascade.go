package repo

import (
	"slices"

	"gorm.io/gorm"

	"store-rating/internal/domain"
)

const refreshAggregatesSQL = `UPDATE stores SET
	total_ratings = (SELECT COUNT(*) FROM ratings WHERE ratings.store_id = ?),
	average_rating = COALESCE((SELECT AVG(ratings.rating) FROM ratings WHERE ratings.store_id = ?), 0)
WHERE id = ?`

// refreshAggregates 由评分表重算店铺聚合，必须在写评分的同一事务内调用
func refreshAggregates(tx *gorm.DB, storeID string) error {
	return tx.Exec(refreshAggregatesSQL, storeID, storeID, storeID).Error
}

func purgeStore(tx *gorm.DB, storeID string) (int64, error) {
	if err := tx.Where("store_id = ?", storeID).Delete(&domain.Rating{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("id = ?", storeID).Delete(&domain.Store{})
	return res.RowsAffected, res.Error
}

// purgeUser 删除用户及其名下店铺、本人评分，并重算受影响店铺
func purgeUser(tx *gorm.DB, userID string) (int64, error) {
	var rated []string
	if err := tx.Model(&domain.Rating{}).Distinct().
		Where("user_id = ?", userID).Pluck("store_id", &rated).Error; err != nil {
		return 0, err
	}
	if err := tx.Where("user_id = ?", userID).Delete(&domain.Rating{}).Error; err != nil {
		return 0, err
	}

	var owned []string
	if err := tx.Model(&domain.Store{}).Where("owner_id = ?", userID).Pluck("id", &owned).Error; err != nil {
		return 0, err
	}
	for _, id := range owned {
		if _, err := purgeStore(tx, id); err != nil {
			return 0, err
		}
	}
	for _, id := range rated {
		if slices.Contains(owned, id) {
			continue
		}
		if err := refreshAggregates(tx, id); err != nil {
			return 0, err
		}
	}

	res := tx.Where("id = ?", userID).Delete(&domain.User{})
	return res.RowsAffected, res.Error
}
