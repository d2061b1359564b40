package database

import (
	"errors"
	"fmt"
	"library_stats/pkg/models"
	"library_stats/pkg/table"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var ErrDatasetNotFound = errors.New("dataset not found")

const batchSize = 500

// InitLoansDB connects to the database selected by DB_DRIVER and migrates
// the loan schema. Connection failures are fatal.
func InitLoansDB() *gorm.DB {
	driver := getEnv("DB_DRIVER", "postgres")

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		path := getEnv("SQLITE_PATH", "library_stats.db")
		log.Printf("Opening sqlite database: %s", path)
		dialector = sqlite.Open(path)
	case "postgres":
		host := getEnv("DB_HOST", "postgres")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "program")
		password := getEnv("DB_PASSWORD", "test")
		dbname := getEnv("DB_NAME", "library_stats")

		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			host, user, password, dbname, port)

		log.Printf("Connecting to loans database: %s@%s:%s/%s", user, host, port, dbname)
		dialector = postgres.Open(dsn)
	default:
		log.Fatalf("Unsupported DB_DRIVER %q", driver)
	}

	return initDB(dialector)
}

func initDB(dialector gorm.Dialector) *gorm.DB {
	var db *gorm.DB
	var err error
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(dialector, &gorm.Config{})
		if err == nil {
			break
		}
		log.Printf("Database connection attempt %d/%d failed: %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(5 * time.Second)
		}
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	log.Println("Database connection established successfully")
	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Dataset{}, &models.Loan{})
}

// SaveDataset stores t under name, replacing any dataset with the same name.
func SaveDataset(db *gorm.DB, name string, t *table.Table) (*models.Dataset, error) {
	dataset := models.Dataset{
		DatasetUid: uuid.New().String(),
		Name:       name,
		Columns:    t.Columns(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Dataset
		err := tx.Where("name = ?", name).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Where("dataset_id = ?", existing.ID).Delete(&models.Loan{}).Error; err != nil {
				return fmt.Errorf("delete loans of %s: %w", name, err)
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("delete dataset %s: %w", name, err)
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Create(&dataset).Error; err != nil {
			return fmt.Errorf("create dataset %s: %w", name, err)
		}
		if t.Len() == 0 {
			return nil
		}

		loans := make([]models.Loan, t.Len())
		copy(loans, t.Records())
		for i := range loans {
			loans[i].ID = 0
			loans[i].LoanUid = uuid.New().String()
			loans[i].DatasetID = dataset.ID
			loans[i].Position = i
		}
		if err := tx.CreateInBatches(&loans, batchSize).Error; err != nil {
			return fmt.Errorf("insert loans of %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

// LoadDataset reads a stored dataset back in its original row order.
func LoadDataset(db *gorm.DB, name string) (*table.Table, error) {
	var dataset models.Dataset
	if err := db.Where("name = ?", name).First(&dataset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
		}
		return nil, err
	}

	var loans []models.Loan
	if err := db.Where("dataset_id = ?", dataset.ID).Order("position asc").Find(&loans).Error; err != nil {
		return nil, fmt.Errorf("load loans of %s: %w", name, err)
	}
	for i := range loans {
		loans[i].IssueDate = loans[i].IssueDate.UTC()
		loans[i].DueDate = loans[i].DueDate.UTC()
		if loans[i].ReturnDate != nil {
			d := loans[i].ReturnDate.UTC()
			loans[i].ReturnDate = &d
		}
	}
	return table.New(dataset.Columns, loans), nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
