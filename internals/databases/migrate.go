package database

import (
	"log"

	"gorm.io/gorm"

	attendanceModel "eschoolku_backend/internals/features/attendance/model"
	eschoolModel "eschoolku_backend/internals/features/eschools/eschool/model"
	membershipModel "eschoolku_backend/internals/features/eschools/membership/model"
	kasModel "eschoolku_backend/internals/features/kas/model"
	schoolModel "eschoolku_backend/internals/features/school/schools/model"
	userModel "eschoolku_backend/internals/features/users/user/model"
)

// Migrate menjalankan AutoMigrate untuk semua tabel domain.
// Urutan mengikuti arah FK (parent dulu).
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schoolModel.School{},
		&userModel.User{},
		&eschoolModel.Eschool{},
		&membershipModel.Membership{},
		&kasModel.KasRecord{},
		&kasModel.KasPayment{},
		&attendanceModel.AttendanceRecord{},
	)
}

func MigrateOrFatal(db *gorm.DB) {
	if err := Migrate(db); err != nil {
		log.Fatalf("❌ Gagal migrasi DB: %v", err)
	}
	log.Println("✅ Migrasi DB selesai.")
}
