package recorder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"teetimes-backend/internal/discovery"
	"teetimes-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("teetimes.internal.recorder")

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables request/response dumping on
// verification traffic, pass nil to disable.
func SetRestyInstrumentOutput(output restyutil.InstrumentOutput) {
	restyInstrumentOutput = output
}

// Verifier checks that a discovered booking url actually answers
// before it gets persisted. Booking engines sit behind cloudflare
// frequently enough that the client carries the bypass transport.
type Verifier struct {
	http *resty.Client
}

func NewVerifier() Verifier {
	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	client.SetTimeout(time.Second * 30)

	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return Verifier{http: client}
}

// VerifyBookingUrl fetches the url once. A 429 is escalated as
// discovery.ErrRateLimited so the whole run stops, anything else
// non-2xx is an ordinary error the caller may log and shrug off.
func (v Verifier) VerifyBookingUrl(ctx context.Context, url string) error {
	ctx, span := tracer.Start(ctx, "VerifyBookingUrl")
	defer span.End()

	res, err := v.http.R().SetContext(ctx).Get(url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch booking url")
		return fmt.Errorf("verify booking url: %w", err)
	}
	if res.StatusCode() == http.StatusTooManyRequests {
		span.SetStatus(codes.Error, "rate limited")
		return fmt.Errorf("verify booking url %s: %w", url, discovery.ErrRateLimited)
	}
	if res.StatusCode() >= 400 {
		span.SetStatus(codes.Error, "booking url unhealthy")
		return fmt.Errorf("booking url %s returned status %d", url, res.StatusCode())
	}
	return nil
}
