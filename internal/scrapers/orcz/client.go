package orcz

import (
	"bytes"
	"context"
	"fmt"
	"shift-redeemer/internal/components/assert"
	"shift-redeemer/internal/components/telemetry"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_shift_codes = "client.shift-codes"
	report_extract_rows       = "extract.rows"
)

type ClientOptions struct {
	// Pages overrides the page url of a game.
	Pages            map[Game]string
	UserAgent        string
	BypassCloudflare bool
	InstrumentOutput telemetry.InstrumentOutput
}

// Client fetches code tables from orcz.
type Client struct {
	http  *resty.Client
	pages map[Game]string
	tel   telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) *Client {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("orcz", tel)

	httpClient := resty.New()
	if opts.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	if opts.UserAgent != "" {
		httpClient.SetHeader("user-agent", opts.UserAgent)
	}
	httpClient.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(httpClient, tel, opts.InstrumentOutput)

	pages := map[Game]string{}
	for _, g := range Games {
		pages[g] = g.PageUrl()
	}
	for g, page := range opts.Pages {
		pages[g] = page
	}

	return &Client{
		http:  httpClient,
		pages: pages,
		tel:   tel,
	}
}

// ShiftCodes fetches and parses every code listed for a game.
func (c *Client) ShiftCodes(ctx context.Context, game Game) ([]ShiftCode, error) {
	endpoint := c.pages[game]
	assert.NotEmptyStr(endpoint)

	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(
			report_client_shift_codes,
			fmt.Errorf("fetch: %w", err),
			endpoint,
		)
		return nil, err
	}
	if res.IsError() {
		err := StatusError{StatusCode: res.StatusCode(), Url: endpoint}
		c.tel.ReportBroken(report_client_shift_codes, err)
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(
			report_client_shift_codes,
			fmt.Errorf("parse: %w", err),
			endpoint,
		)
		return nil, err
	}

	codes, err := ExtractShiftCodes(doc, game)
	if err != nil {
		c.tel.ReportBroken(
			report_client_shift_codes,
			fmt.Errorf("extract: %w", err),
			endpoint,
		)
		return nil, fmt.Errorf("%s code table: %w", game, err)
	}

	c.tel.ReportCount(report_extract_rows, int64(len(codes)))
	return codes, nil
}
