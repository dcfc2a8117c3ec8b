package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// FallbackCancellationText is used whenever cancellation copy cannot be generated.
const FallbackCancellationText = "Subject: Cancellation Request\n\nPlease cancel my subscription immediately."

// Extractor is the boundary to the structured-extraction service.
type Extractor interface {
	// DetectSubscriptions turns free text into subscription candidates.
	// Failures are reported as *ExtractionError.
	DetectSubscriptions(ctx context.Context, freeText string) ([]DetectedSubscription, error)
	// CancellationText returns email copy for cancelling serviceName. It
	// never fails; FallbackCancellationText is returned instead.
	CancellationText(ctx context.Context, serviceName string) string
}

// contentGenerator is the slice of the genai client used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiOptions struct {
	APIKey string
	Model  string
	Logger *zap.Logger
	// Now supplies "today" for the prompt. Defaults to time.Now.
	Now func() time.Time
}

// GeminiExtractor talks to the Gemini API.
type GeminiExtractor struct {
	models contentGenerator
	model  string
	log    *zap.Logger
	now    func() time.Time
}

func NewGeminiExtractor(ctx context.Context, opts GeminiOptions) (*GeminiExtractor, error) {
	if opts.APIKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return newGeminiExtractor(client.Models, opts), nil
}

func newGeminiExtractor(models contentGenerator, opts GeminiOptions) *GeminiExtractor {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &GeminiExtractor{models: models, model: opts.Model, log: opts.Logger, now: opts.Now}
}

// detectionSchema constrains the model output to an array of complete records.
var detectionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":            {Type: genai.TypeString, Description: "Name of the service (e.g. Netflix, Spotify)"},
			"cost":            {Type: genai.TypeNumber, Description: "Cost per cycle"},
			"currency":        {Type: genai.TypeString, Description: "Currency code (e.g. USD, EUR)"},
			"billingCycle":    {Type: genai.TypeString, Enum: []string{string(CycleMonthly), string(CycleYearly), string(CycleWeekly)}},
			"nextRenewalDate": {Type: genai.TypeString, Description: "ISO date string YYYY-MM-DD for next payment"},
			"category":        {Type: genai.TypeString, Description: "Category (Entertainment, Utilities, Software, etc.)"},
			"isTrial":         {Type: genai.TypeBoolean, Description: "Whether it appears to be a free trial"},
		},
		Required: []string{"name", "cost", "currency", "billingCycle", "nextRenewalDate", "category", "isTrial"},
	},
}

func detectionPrompt(text string, today time.Time) string {
	return fmt.Sprintf(`Analyze the following text (which could be a bank statement, email dump, or list of expenses) and extract any recurring subscriptions.
Today's date is %s.

For each subscription found, estimate the next renewal date based on typical billing cycles if not explicitly stated.
If the currency symbol is $, assume USD.

Text to analyze:
"%s"
`, today.Format(dateLayout), text)
}

func (g *GeminiExtractor) DetectSubscriptions(ctx context.Context, freeText string) ([]DetectedSubscription, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(detectionPrompt(freeText, g.now())), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   detectionSchema,
	})
	if err != nil {
		g.log.Error("extraction request failed", zap.Error(err))
		return nil, &ExtractionError{Err: err}
	}
	if resp == nil {
		return nil, nil
	}
	detected, err := ParseDetected(resp.Text())
	if err != nil {
		g.log.Error("extraction response rejected", zap.Error(err))
		return nil, &ExtractionError{Err: err}
	}
	g.log.Debug("extraction finished", zap.Int("detected", len(detected)))
	return detected, nil
}

func (g *GeminiExtractor) CancellationText(ctx context.Context, serviceName string) string {
	prompt := fmt.Sprintf("Write a polite but firm cancellation email for a subscription to %q. Keep it concise.", serviceName)
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		g.log.Debug("cancellation text unavailable, using fallback", zap.Error(err))
		return FallbackCancellationText
	}
	if resp == nil {
		return FallbackCancellationText
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return FallbackCancellationText
	}
	return text
}

// ParseDetected decodes and checks a JSON array of detected subscriptions.
// Blank input decodes to no results; anything but an array, null included,
// is rejected.
func ParseDetected(payload string) ([]DetectedSubscription, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, nil
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("parsing response: expected an array, got %s", payload)
	}

	detected := make([]DetectedSubscription, 0, len(items))
	for i, item := range items {
		for _, field := range detectionSchema.Items.Required {
			if _, ok := item[field]; !ok {
				return nil, fmt.Errorf("item %d: missing field %q", i, field)
			}
		}
		raw, _ := json.Marshal(item)
		var d DetectedSubscription
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("item %d: empty name", i)
		}
		if !validCost(d.Cost) {
			return nil, fmt.Errorf("item %d (%s): invalid cost %v", i, d.Name, d.Cost)
		}
		if !d.BillingCycle.Valid() {
			return nil, fmt.Errorf("item %d (%s): unknown billing cycle %q", i, d.Name, d.BillingCycle)
		}
		detected = append(detected, d)
	}
	return detected, nil
}

// LogoURL returns the placeholder logo for a service name.
func LogoURL(seed string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(seed) + "/64/64"
}

// NewRecords gives detected items an id and an initial status so they can
// be inserted into the store. Trials start as Expiring Soon.
func NewRecords(detected []DetectedSubscription, newID func() string) []Subscription {
	records := make([]Subscription, 0, len(detected))
	for _, d := range detected {
		status := StatusActive
		if d.IsTrial {
			status = StatusExpiringSoon
		}
		records = append(records, Subscription{
			ID:              newID(),
			Name:            strings.TrimSpace(d.Name),
			Cost:            d.Cost,
			Currency:        strings.TrimSpace(d.Currency),
			BillingCycle:    d.BillingCycle,
			NextRenewalDate: d.NextRenewalDate,
			Category:        Category(strings.TrimSpace(d.Category)),
			IsTrial:         d.IsTrial,
			Status:          status,
			LogoURL:         LogoURL(d.Name),
		})
	}
	return records
}

// UnavailableExtractor stands in when no extraction service is configured.
// Detection fails with Reason; cancellation copy falls back to the template.
type UnavailableExtractor struct {
	Reason error
}

func (u UnavailableExtractor) DetectSubscriptions(context.Context, string) ([]DetectedSubscription, error) {
	return nil, &ExtractionError{Err: u.Reason}
}

func (u UnavailableExtractor) CancellationText(context.Context, string) string {
	return FallbackCancellationText
}
