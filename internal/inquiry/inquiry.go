package inquiry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"atelier/internal/catalog"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"github.com/speps/go-hashids/v2"
	"go.uber.org/zap"
)

const (
	waBase    = "https://wa.me/"
	minDigits = 7
	qrSize    = 256
)

// ErrNoPhone means neither the stored override nor the configured number is usable.
var ErrNoPhone = errors.New("no whatsapp number configured")

// NumberSource returns the stored WhatsApp override, or "" when unset.
type NumberSource interface {
	WhatsAppNumber(ctx context.Context) (string, error)
}

type Config struct {
	Phone          string // fallback number
	SiteURL        string // public storefront origin
	CurrencySymbol string
	RefSalt        string
}

// Item is what the customer is asking about.
type Item struct {
	ID    int64
	Name  string
	Slug  string
	Price decimal.Decimal
	Size  string
	Color string
}

type Builder struct {
	cfg     Config
	numbers NumberSource
	hid     *hashids.HashID
	money   accounting.Accounting
	logger  *zap.SugaredLogger
}

func NewBuilder(cfg Config, numbers NumberSource, logger *zap.SugaredLogger) (*Builder, error) {
	hd := hashids.NewData()
	hd.Salt = cfg.RefSalt
	hd.MinLength = 6
	hd.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	hid, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("hashids: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Builder{
		cfg:     cfg,
		numbers: numbers,
		hid:     hid,
		money:   accounting.Accounting{Symbol: cfg.CurrencySymbol, Precision: 2, Thousand: ",", Decimal: "."},
		logger:  logger,
	}, nil
}

// Ref is the short code quoted in messages so staff can find the product.
func (b *Builder) Ref(productID int64) (string, error) {
	return b.hid.EncodeInt64([]int64{productID})
}

// FormatPrice renders a price with the configured currency symbol.
func (b *Builder) FormatPrice(p decimal.Decimal) string {
	return b.money.FormatMoney(p.InexactFloat64())
}

// Phone resolves the number to message: the stored override wins over config.
// A failing lookup falls back to config.
func (b *Builder) Phone(ctx context.Context) (string, error) {
	if b.numbers != nil {
		override, err := b.numbers.WhatsAppNumber(ctx)
		if err != nil {
			b.logger.Warnw("whatsapp number lookup failed", "error", err)
		} else if d := Digits(override); len(d) >= minDigits {
			return d, nil
		}
	}
	if d := Digits(b.cfg.Phone); len(d) >= minDigits {
		return d, nil
	}
	return "", ErrNoPhone
}

// Message is the prefilled chat text.
func (b *Builder) Message(it Item) (string, error) {
	ref, err := b.Ref(it.ID)
	if err != nil {
		return "", fmt.Errorf("ref: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Hi! I'm interested in this item:\n\n")
	fmt.Fprintf(&sb, "%s (Ref %s)\n", it.Name, ref)
	if s := strings.TrimSpace(it.Size); s != "" {
		fmt.Fprintf(&sb, "Size: %s\n", s)
	}
	if c := strings.TrimSpace(it.Color); c != "" {
		fmt.Fprintf(&sb, "Colour: %s\n", catalog.ColorName(catalog.NormalizeColor(c)))
	}
	fmt.Fprintf(&sb, "Price: %s\n", b.FormatPrice(it.Price))
	if u := b.ProductURL(it.Slug); u != "" {
		fmt.Fprintf(&sb, "\n%s", u)
	}
	return sb.String(), nil
}

// ProductURL is the public page of the product, or "" without a site URL.
func (b *Builder) ProductURL(slug string) string {
	site := strings.TrimRight(strings.TrimSpace(b.cfg.SiteURL), "/")
	if site == "" {
		return ""
	}
	return site + "/products/" + url.PathEscape(slug)
}

// Link builds the wa.me deep link for an item.
func (b *Builder) Link(ctx context.Context, it Item) (string, error) {
	phone, err := b.Phone(ctx)
	if err != nil {
		return "", err
	}
	msg, err := b.Message(it)
	if err != nil {
		return "", err
	}
	text := strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
	return waBase + phone + "?text=" + text, nil
}

// QR renders a link as a PNG.
func (b *Builder) QR(link string) ([]byte, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	return png, nil
}

// Digits strips everything but 0-9.
func Digits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
