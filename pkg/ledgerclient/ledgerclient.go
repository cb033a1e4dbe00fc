package ledgerclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Snassy-icp/app-sneeddao-sub001/internal/wallet"
	"github.com/Snassy-icp/app-sneeddao-sub001/models"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
}

// Client talks to the platform gateway that fronts the ledger, vault, lock,
// price and claim services.
//
// Reads go through a client that retries transport errors. Transfers and claim
// submissions are never retried so a lost response cannot cause a second debit.
type Client struct {
	httpClient *http.Client
	query      *resty.Client
	submit     *resty.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	newResty := func(retries int) *resty.Client {
		return resty.NewWithClient(httpClient).
			SetBaseURL(cfg.BaseURL).
			SetHeader("Accept", "application/json").
			SetHeader("Content-Type", "application/json").
			SetHeader("X-Api-Key", cfg.APIKey).
			SetRetryCount(retries).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(3 * time.Second)
	}

	return &Client{
		httpClient: httpClient,
		query:      newResty(cfg.RetryCount),
		submit:     newResty(0),
	}
}

// HTTPClient exposes the transport shared by both resty clients.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) LedgerMeta(ctx context.Context, ledger string) (models.LedgerMeta, error) {
	var meta models.LedgerMeta
	if err := c.get(ctx, "/ledgers/"+url.PathEscape(ledger)+"/metadata", nil, &meta); err != nil {
		return models.LedgerMeta{}, errors.Wrapf(err, "ledger %s metadata", ledger)
	}
	if meta.Ledger == "" {
		meta.Ledger = ledger
	}
	return meta, nil
}

// Balance returns the balance of owner's account on ledger. An empty
// subaccount means the default account.
func (c *Client) Balance(ctx context.Context, ledger, owner, subaccount string) (uint64, error) {
	params := map[string]string{}
	if subaccount != "" {
		params["subaccount"] = subaccount
	}
	var result struct {
		Balance uint64 `json:"balance"`
	}
	path := fmt.Sprintf("/ledgers/%s/accounts/%s/balance", url.PathEscape(ledger), url.PathEscape(owner))
	if err := c.get(ctx, path, params, &result); err != nil {
		return 0, errors.Wrapf(err, "balance of %s on %s", owner, ledger)
	}
	return result.Balance, nil
}

// Locks lists the locks the lock service holds over owner's vault funds on ledger.
func (c *Client) Locks(ctx context.Context, ledger, owner string) ([]models.Lock, error) {
	var locks []models.Lock
	path := fmt.Sprintf("/locks/%s/%s", url.PathEscape(ledger), url.PathEscape(owner))
	if err := c.get(ctx, path, nil, &locks); err != nil {
		return nil, errors.Wrapf(err, "locks of %s on %s", owner, ledger)
	}
	return locks, nil
}

// PriceUSD returns the USD price of one whole token, or false if the token is unpriced.
func (c *Client) PriceUSD(ctx context.Context, ledger string) (decimal.Decimal, bool, error) {
	var result struct {
		USD *decimal.Decimal `json:"usd"`
	}
	if err := c.get(ctx, "/prices/"+url.PathEscape(ledger), nil, &result); err != nil {
		if errors.Is(err, errNotFound) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, errors.Wrapf(err, "price of %s", ledger)
	}
	if result.USD == nil {
		return decimal.Zero, false, nil
	}
	return *result.USD, true, nil
}

// Transfer debits one custodial source. Frontend transfers are signed with
// the account key; vault transfers are authorised by the gateway key.
func (c *Client) Transfer(ctx context.Context, args models.TransferArgs, privateKey string) (uint64, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return 0, err
	}

	body := map[string]interface{}{"transfer": json.RawMessage(payload)}
	if args.Source == models.SourceFrontend {
		sig, err := wallet.Sign(privateKey, payload)
		if err != nil {
			return 0, errors.Wrap(err, "sign transfer")
		}
		body["signature"] = sig
	}

	var result models.TransferResult
	path := fmt.Sprintf("/ledgers/%s/transfer", url.PathEscape(args.Ledger))
	if err := c.post(ctx, path, body, &result); err != nil {
		return 0, errors.Wrapf(err, "%s transfer of %d on %s", args.Source, args.Amount, args.Ledger)
	}

	logrus.WithFields(logrus.Fields{
		"ledger": args.Ledger,
		"source": args.Source,
		"amount": args.Amount,
		"block":  result.BlockIndex,
	}).Info("transfer submitted")
	return result.BlockIndex, nil
}

// SubmitClaim queues a claim-and-withdraw request and returns its id.
func (c *Client) SubmitClaim(ctx context.Context, args models.ClaimArgs) (uint64, error) {
	var result struct {
		RequestID uint64 `json:"request_id"`
	}
	if err := c.post(ctx, "/claims", args, &result); err != nil {
		return 0, errors.Wrapf(err, "submit claim for position %s", args.PositionID)
	}
	return result.RequestID, nil
}

// ClaimStatus returns nil when the claim service does not know requestID.
func (c *Client) ClaimStatus(ctx context.Context, requestID uint64) (*models.StatusRecord, error) {
	var record *models.StatusRecord
	err := c.get(ctx, "/claims/"+strconv.FormatUint(requestID, 10), nil, &record)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "claim %d status", requestID)
	}
	return record, nil
}

var errNotFound = errors.New("not found")

func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	resp, err := c.query.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	return decode(resp, err, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.submit.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	return decode(resp, err, out)
}

func decode(resp *resty.Response, err error, out interface{}) error {
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return errNotFound
	}
	if resp.IsError() {
		var gwErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(resp.Body(), &gwErr) == nil && gwErr.Error != "" {
			return errors.Errorf("gateway returned %d: %s", resp.StatusCode(), gwErr.Error)
		}
		return errors.Errorf("gateway returned %d", resp.StatusCode())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrap(err, "decode gateway response")
	}
	return nil
}
