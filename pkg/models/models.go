package models

import (
	"time"
)

// Column names of the loan table as they appear in the source header.
const (
	ColBookTitle        = "book_title"
	ColGenre            = "genre"
	ColBorrowerID       = "borrower_id"
	ColBorrowerType     = "borrower_type"
	ColStudentBatch     = "student_batch"
	ColStudentMajor     = "student_major"
	ColBorrowerAgeGroup = "borrower_age_group"
	ColIssueDate        = "issue_date"
	ColDueDate          = "due_date"
	ColReturnDate       = "return_date"
	ColOverdueStatus    = "overdue_status"
	ColDaysOnLoan       = "days_on_loan"
)

const (
	StatusOnTime       = "On Time"
	StatusOverdue      = "Overdue"
	StatusReturnedLate = "Returned Late"
)

// Dataset is a named, imported loan table. Columns keeps the source header
// order, which is the schema of the table.
type Dataset struct {
	ID         uint     `gorm:"primaryKey"`
	DatasetUid string   `gorm:"type:uuid;uniqueIndex;not null"`
	Name       string   `gorm:"size:80;not null;uniqueIndex"`
	Columns    []string `gorm:"type:text;serializer:json;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Loan is one book-loan event. ReturnDate is nil while the loan is open.
type Loan struct {
	ID               uint              `gorm:"primaryKey" json:"-"`
	LoanUid          string            `gorm:"type:uuid;uniqueIndex" json:"-"`
	DatasetID        uint              `gorm:"index" json:"-"`
	Position         int               `gorm:"not null" json:"-"`
	BookTitle        string            `gorm:"not null" json:"book_title"`
	Genre            string            `gorm:"size:80;not null" json:"genre"`
	BorrowerID       string            `gorm:"size:80;not null" json:"borrower_id"`
	BorrowerType     string            `gorm:"size:40;not null" json:"borrower_type"`
	StudentBatch     string            `gorm:"size:40" json:"student_batch,omitempty"`
	StudentMajor     string            `gorm:"size:80" json:"student_major,omitempty"`
	BorrowerAgeGroup string            `gorm:"size:40" json:"borrower_age_group,omitempty"`
	IssueDate        time.Time         `gorm:"not null" json:"issue_date"`
	DueDate          time.Time         `gorm:"not null" json:"due_date"`
	ReturnDate       *time.Time        `json:"return_date"`
	OverdueStatus    string            `gorm:"size:20" json:"overdue_status"`
	DaysOnLoan       *float64          `json:"days_on_loan"`
	Extra            map[string]string `gorm:"type:text;serializer:json" json:"extra,omitempty"`
}

// IsOpen reports whether the book has not been returned yet.
func (l *Loan) IsOpen() bool {
	return l.ReturnDate == nil
}

// IsLate reports an overdue loan or one returned after its due date.
func (l *Loan) IsLate() bool {
	return l.OverdueStatus == StatusOverdue || l.OverdueStatus == StatusReturnedLate
}
