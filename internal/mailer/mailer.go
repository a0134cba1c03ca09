package mailer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-order-service/internal/config"
	"print-order-service/internal/logging"
	"print-order-service/internal/model"
	"print-order-service/internal/upload"
)

const Brand = "Hot Market Design DTF"

var ErrNoRecipient = errors.New("recipient email is required")

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"statusText":    StatusText,
	"statusColor":   statusColor,
	"statusMessage": statusMessage,
	"money":         func(v float64) string { return fmt.Sprintf("$%.2f", v) },
}).ParseFS(templateFS, "templates/*.html"))

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer renders order emails and delivers them over SMTP.
type Mailer struct {
	cfg        config.MailConfig
	ordersURL  string
	assetsBase string
	send       SendFunc
	now        func() time.Time
}

// New builds a Mailer. storefrontURL is where buyers view their orders and
// assetsBase resolves stored image paths into absolute links.
func New(cfg config.MailConfig, storefrontURL, assetsBase string) *Mailer {
	return &Mailer{
		cfg:        cfg,
		ordersURL:  strings.TrimRight(storefrontURL, "/") + "/orders",
		assetsBase: assetsBase,
		send:       smtp.SendMail,
		now:        time.Now,
	}
}

type confirmationView struct {
	Brand     string
	Order     *model.Order
	Items     []model.OrderItem
	OrdersURL string
	Year      int
}

type statusView struct {
	Brand       string
	OrderNumber string
	Name        string
	Status      model.OrderStatus
	Note        string
	OrdersURL   string
	Year        int
}

func ConfirmationSubject(orderNumber string) string {
	return "Order Confirmation - " + orderNumber
}

func StatusSubject(orderNumber string, status model.OrderStatus) string {
	return fmt.Sprintf("Order Update - %s - %s", orderNumber, StatusText(status))
}

func (m *Mailer) RenderConfirmation(order *model.Order) (string, error) {
	items := make([]model.OrderItem, len(order.Items))
	for i, it := range order.Items {
		it.ImageURL = upload.Absolute(it.ImageURL, m.assetsBase)
		items[i] = it
	}

	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "confirmation.html", confirmationView{
		Brand:     Brand,
		Order:     order,
		Items:     items,
		OrdersURL: m.ordersURL,
		Year:      m.now().Year(),
	})
	return buf.String(), err
}

func (m *Mailer) RenderStatusUpdate(name, orderNumber string, status model.OrderStatus, note string) (string, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "status_update.html", statusView{
		Brand:       Brand,
		OrderNumber: orderNumber,
		Name:        name,
		Status:      status,
		Note:        note,
		OrdersURL:   m.ordersURL,
		Year:        m.now().Year(),
	})
	return buf.String(), err
}

func (m *Mailer) SendOrderConfirmation(ctx context.Context, to model.Recipient, order *model.Order) error {
	body, err := m.RenderConfirmation(order)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	return m.deliver(ctx, to, ConfirmationSubject(order.OrderNumber), body)
}

func (m *Mailer) SendStatusUpdate(ctx context.Context, to model.Recipient, orderNumber string, status model.OrderStatus, note string) error {
	body, err := m.RenderStatusUpdate(to.Name, orderNumber, status, note)
	if err != nil {
		return fmt.Errorf("render status update: %w", err)
	}
	return m.deliver(ctx, to, StatusSubject(orderNumber, status), body)
}

func (m *Mailer) deliver(ctx context.Context, to model.Recipient, subject, body string) error {
	if strings.TrimSpace(to.Email) == "" {
		return ErrNoRecipient
	}
	from := m.cfg.Sender()
	msg := buildMessage(from, to, subject, body, m.now())

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	// smtp.SendMail has no context support; run it aside and stop waiting
	// when ctx ends.
	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, from, []string{to.Email}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", to.Email, err)
		}
		logging.FromContext(ctx).Info("email sent", zap.String("to", to.Email), zap.String("subject", subject))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from string, to model.Recipient, subject, body string, now time.Time) []byte {
	var b bytes.Buffer
	fromHeader := from
	if from != "" {
		fromHeader = mime.QEncoding.Encode("utf-8", Brand) + " <" + from + ">"
	}
	toHeader := to.Email
	if to.Name != "" {
		toHeader = mime.QEncoding.Encode("utf-8", to.Name) + " <" + to.Email + ">"
	}

	fmt.Fprintf(&b, "From: %s\r\n", fromHeader)
	fmt.Fprintf(&b, "To: %s\r\n", toHeader)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domainOf(from))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.Bytes()
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}

// StatusText turns a status code into a title, e.g. "in_printing" becomes
// "In Printing".
func StatusText(s model.OrderStatus) string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func statusColor(s model.OrderStatus) string {
	switch s {
	case model.StatusOrderPlaced:
		return "#f39c12"
	case model.StatusInPrinting:
		return "#3498db"
	case model.StatusOrderDispatched:
		return "#9b59b6"
	case model.StatusCompleted:
		return "#27ae60"
	case model.StatusCancelled:
		return "#e74c3c"
	}
	return "#7f8c8d"
}

func statusMessage(s model.OrderStatus) string {
	switch s {
	case model.StatusOrderPlaced:
		return "Your order has been received and is being processed."
	case model.StatusInPrinting:
		return "Your order is now in production and being printed."
	case model.StatusOrderDispatched:
		return "Great news! Your order has been dispatched and is on its way."
	case model.StatusCompleted:
		return "Your order has been completed and delivered successfully."
	case model.StatusCancelled:
		return "Your order has been cancelled. Please contact us if you have any questions."
	}
	return "Your order status has been updated."
}
