package main

import (
	"errors"
	"library_stats/pkg/database"
	"library_stats/pkg/export"
	"library_stats/pkg/filter"
	"library_stats/pkg/loader"
	"library_stats/pkg/stats"
	"library_stats/pkg/table"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	db     *gorm.DB
	cache  *loader.Cache
	source string
)

func main() {
	log.Println("Starting library stats dashboard...")

	source = getEnv("DATA_SOURCE", "library_data.csv")
	port := getEnv("PORT", "8090")

	if strings.HasPrefix(source, loader.DatabasePrefix) {
		db = database.InitLoansDB()
	}
	cache = loader.NewCache(loader.SourceLoader(db))

	if _, err := cache.Load(source); err != nil {
		log.Fatalf("Failed to load library data from %s: %v", source, err)
	}

	server := gin.Default()
	server.GET("/api/v1/options", getOptions)
	server.GET("/api/v1/loans", getLoans)
	server.GET("/api/v1/loans/export", exportLoans)
	server.GET("/api/v1/stats", getStats)
	server.GET("/api/v1/charts", getCharts)
	server.GET("/manage/health", healthCheck)

	log.Printf("Dashboard service starting on :%s", port)
	if err := server.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// filteredTable loads the source table and applies the request's selection.
// It writes the error response itself and returns false on failure.
func filteredTable(c *gin.Context) (*table.Table, bool) {
	sel, err := parseSelection(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	t, err := cache.Load(source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return filter.Apply(t, sel), true
}

func parseSelection(c *gin.Context) (filter.Selection, error) {
	var sel filter.Selection
	var err error

	if from := c.Query("from"); from != "" {
		sel.From, err = time.Parse(table.DateLayout, from)
		if err != nil {
			return sel, errors.New("from must be a date in YYYY-MM-DD format")
		}
	}
	if to := c.Query("to"); to != "" {
		sel.To, err = time.Parse(table.DateLayout, to)
		if err != nil {
			return sel, errors.New("to must be a date in YYYY-MM-DD format")
		}
	}
	if !sel.From.IsZero() && !sel.To.IsZero() && sel.From.After(sel.To) {
		return sel, errors.New("from must not be after to")
	}

	sel.Values = make(map[string][]string)
	for _, dim := range filter.Dimensions {
		if values := c.QueryArray(dim); len(values) > 0 {
			sel.Values[dim] = values
		}
	}
	return sel, nil
}

func getOptions(c *gin.Context) {
	t, err := cache.Load(source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	opts := filter.OptionsFor(t)

	dimensions := make([]gin.H, len(opts.Dimensions))
	for i, d := range opts.Dimensions {
		dimensions[i] = gin.H{
			"column": d.Column,
			"values": d.Values,
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"earliestIssueDate": formatDate(opts.EarliestIssue),
		"latestIssueDate":   formatDate(opts.LatestIssue),
		"dimensions":        dimensions,
	})
}

func getLoans(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("size", "50")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 500 {
		size = 50
	}

	t, ok := filteredTable(c)
	if !ok {
		return
	}

	columns := t.Columns()
	// page is checked before multiplying so large values cannot overflow.
	offset := t.Len()
	if page-1 <= t.Len()/size {
		offset = (page - 1) * size
	}
	end := offset + size
	if end > t.Len() {
		end = t.Len()
	}

	items := make([]gin.H, 0, end-offset)
	for i := offset; i < end; i++ {
		l := t.Record(i)
		item := gin.H{}
		for _, col := range columns {
			item[col] = table.Text(l, col)
		}
		items = append(items, item)
	}
	c.JSON(http.StatusOK, gin.H{
		"page":          page,
		"pageSize":      size,
		"totalElements": t.Len(),
		"columns":       columns,
		"items":         items,
	})
}

func getStats(c *gin.Context) {
	t, ok := filteredTable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.Summarize(t))
}

func getCharts(c *gin.Context) {
	t, ok := filteredTable(c)
	if !ok {
		return
	}
	charts := stats.BuildCharts(t)

	monthly := make([]gin.H, len(charts.Monthly))
	for i, m := range charts.Monthly {
		monthly[i] = gin.H{
			"month": m.Month.Format("2006-01"),
			"count": m.Count,
		}
	}
	response := gin.H{
		"monthly":         monthly,
		"topTitles":       charts.TopTitles,
		"genres":          charts.Genres,
		"borrowerTypes":   charts.BorrowerTypes,
		"overdueStatuses": charts.OverdueStatuses,
		"meanDaysByGenre": charts.MeanDaysByGenre,
	}
	if charts.AgeGroups != nil {
		response["ageGroups"] = charts.AgeGroups
	}
	c.JSON(http.StatusOK, response)
}

func exportLoans(c *gin.Context) {
	t, ok := filteredTable(c)
	if !ok {
		return
	}
	data, err := export.ToXLSX(t)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build spreadsheet"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Data(http.StatusOK, export.ContentType, data)
}

func healthCheck(ctx *gin.Context) {
	if _, err := cache.Load(source); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Library data could not be loaded",
			"error":   err.Error(),
		})
		return
	}
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "DOWN",
				"details": "Database connection failed",
				"error":   err.Error(),
			})
			return
		}
		if err := sqlDB.Ping(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "DOWN",
				"details": "Database ping failed",
				"error":   err.Error(),
			})
			return
		}
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"details": "Serving " + source,
	})
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(table.DateLayout)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
