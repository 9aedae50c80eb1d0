// Command invoscand serves the invoice extraction pipeline over HTTP.
//
// POST /parse accepts a multipart image upload, runs preprocessing, OCR,
// and extraction, and returns the structured invoice as JSON. Parsed
// invoices are persisted when a database DSN is configured.
//
// Configuration comes from the environment (a .env file is honored):
//
//	INVOSCAN_ADDR                 listen address (default ":8080")
//	INVOSCAN_OCR                  "azure" or "tesseract" (default "tesseract")
//	INVOSCAN_MAX_CONNS            cap on concurrent connections (default 128)
//	INVOSCAN_ROW_TOLERANCE        row grouping tolerance in pixels
//	INVOSCAN_RECONCILE_TOLERANCE  allowed printed-vs-computed totals gap
//	INVOSCAN_DEFAULT_GST_RATE     GST percentage assumed for unrated items
//	AZURE_CV_ENDPOINT             Azure Computer Vision endpoint
//	AZURE_CV_KEY                  Azure Computer Vision key
//	DATABASE_DSN                  PostgreSQL DSN; empty disables persistence
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/net/netutil"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/invoscan/invoscan"
	"github.com/invoscan/invoscan/internal/preproc"
	"github.com/invoscan/invoscan/model"
	"github.com/invoscan/invoscan/ocr"
)

// InvoiceRecord is the persisted form of a parsed invoice.
type InvoiceRecord struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Number        string `json:"number"`
	Date          string `json:"date"`
	SellerName    string `json:"sellerName"`
	SellerGSTIN   string `json:"sellerGstin"`
	BuyerName     string `json:"buyerName"`
	BuyerGSTIN    string `json:"buyerGstin"`
	Net           float64
	Tax           float64
	Gross         float64
	Reconciled    bool
	OCRConfidence float64
	CreatedAt     int64 `gorm:"autoCreateTime" json:"createdAt"`

	Lines []LineItemRecord `gorm:"foreignKey:InvoiceID" json:"lines"`
}

// LineItemRecord is one persisted line item.
type LineItemRecord struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	InvoiceID    uint `gorm:"index" json:"invoiceId"`
	Description  string
	HSN          string
	Quantity     float64
	Unit         string
	UnitPrice    float64
	TaxableValue float64
	GSTRatePct   float64
}

type server struct {
	engine     *invoscan.Engine
	recognizer ocr.Recognizer
	db         *gorm.DB
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("invoscand: .env: %v", err)
	}

	recognizer, err := buildRecognizer()
	if err != nil {
		log.Fatalf("invoscand: ocr: %v", err)
	}

	var db *gorm.DB
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatalf("invoscand: database: %v", err)
		}
		if err := db.AutoMigrate(&InvoiceRecord{}, &LineItemRecord{}); err != nil {
			log.Fatalf("invoscand: migrate: %v", err)
		}
	} else {
		log.Println("invoscand: DATABASE_DSN unset, persistence disabled")
	}

	s := &server{
		engine:     buildEngine(),
		recognizer: recognizer,
		db:         db,
	}

	r := gin.Default()
	r.POST("/parse", s.handleParse)
	r.GET("/invoices", s.handleList)
	r.GET("/invoices/:id", s.handleGet)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	addr := envOr("INVOSCAN_ADDR", ":8080")
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("invoscand: listen %s: %v", addr, err)
	}
	ln = netutil.LimitListener(ln, envInt("INVOSCAN_MAX_CONNS", 128))

	log.Printf("invoscand: listening on %s", addr)
	if err := r.RunListener(ln); err != nil {
		log.Fatalf("invoscand: serve: %v", err)
	}
}

func buildEngine() *invoscan.Engine {
	var opts []invoscan.Option
	if v := envFloat("INVOSCAN_ROW_TOLERANCE"); v > 0 {
		opts = append(opts, invoscan.WithRowTolerance(v))
	}
	if v := envFloat("INVOSCAN_RECONCILE_TOLERANCE"); v > 0 {
		opts = append(opts, invoscan.WithReconcileTolerance(v))
	}
	if v := envFloat("INVOSCAN_DEFAULT_GST_RATE"); v > 0 {
		opts = append(opts, invoscan.WithDefaultGSTRate(v))
	}
	return invoscan.NewEngine(opts...)
}

func buildRecognizer() (ocr.Recognizer, error) {
	switch envOr("INVOSCAN_OCR", "tesseract") {
	case "azure":
		endpoint := os.Getenv("AZURE_CV_ENDPOINT")
		key := os.Getenv("AZURE_CV_KEY")
		if endpoint == "" || key == "" {
			return nil, errors.New("AZURE_CV_ENDPOINT and AZURE_CV_KEY are required for azure ocr")
		}
		return ocr.NewAzure(endpoint, key), nil
	case "tesseract":
		t, err := ocr.NewTesseract()
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown INVOSCAN_OCR %q", os.Getenv("INVOSCAN_OCR"))
	}
}

func (s *server) handleParse(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'image' is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enhanced, err := preproc.Enhance(data, preproc.DefaultConfig())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("preprocess: %v", err)})
		return
	}

	tokens, err := s.recognizer.Recognize(c.Request.Context(), enhanced)
	if err != nil {
		if errors.Is(err, ocr.ErrOCRNotEnabled) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("ocr: %v", err)})
		return
	}

	inv, err := s.engine.Parse(tokens)
	if err != nil {
		if errors.Is(err, invoscan.ErrEmptyDocument) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if s.db != nil {
		rec := recordFromInvoice(inv)
		if err := s.db.Create(rec).Error; err != nil {
			log.Printf("invoscand: persist: %v", err)
		}
	}

	c.JSON(http.StatusOK, inv)
}

func (s *server) handleList(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence disabled"})
		return
	}
	var records []InvoiceRecord
	if err := s.db.Preload("Lines").Order("id desc").Limit(100).Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *server) handleGet(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence disabled"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var rec InvoiceRecord
	if err := s.db.Preload("Lines").First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func recordFromInvoice(inv *model.Invoice) *InvoiceRecord {
	rec := &InvoiceRecord{
		Number:        inv.Details.Number,
		Date:          inv.Details.Date,
		Net:           inv.Totals.Net,
		Tax:           inv.Totals.Tax,
		Gross:         inv.Totals.Gross,
		Reconciled:    inv.Totals.Reconciled,
		OCRConfidence: inv.OCRConfidence,
	}
	if inv.Seller != nil {
		rec.SellerName = inv.Seller.Name
		rec.SellerGSTIN = inv.Seller.GSTIN
	}
	if inv.Buyer != nil {
		rec.BuyerName = inv.Buyer.Name
		rec.BuyerGSTIN = inv.Buyer.GSTIN
	}
	for _, li := range inv.Lines {
		lr := LineItemRecord{
			Description:  li.Description,
			HSN:          li.HSN,
			UnitPrice:    deref(li.UnitPrice),
			TaxableValue: deref(li.TaxableValue),
			GSTRatePct:   deref(li.GSTRatePct),
		}
		if li.Quantity != nil {
			lr.Quantity = li.Quantity.Value
			lr.Unit = li.Quantity.Unit
		}
		rec.Lines = append(rec.Lines, lr)
	}
	return rec
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
