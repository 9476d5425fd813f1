package driver

import (
	"fmt"
	"time"

	"github.com/datazip-inc/tap-monday/constants"
	"github.com/datazip-inc/tap-monday/types"
	"github.com/datazip-inc/tap-monday/utils"
	"github.com/datazip-inc/tap-monday/utils/typeutils"
)

type Config struct {
	// APIToken is sent verbatim in the Authorization header
	APIToken string `json:"api_token" validate:"required"`
	// StartDate bounds incremental streams without a bookmark
	StartDate string `json:"start_date" validate:"required,iso8601"`
	APIURL    string `json:"api_url,omitempty" validate:"omitempty,url"`
	// APIVersion pins the monday.com API version, e.g. 2024-10
	APIVersion        string  `json:"api_version,omitempty"`
	BoardLimit        int     `json:"board_limit,omitempty" validate:"gte=0"`
	ItemsPageSize     int     `json:"items_page_size,omitempty" validate:"gte=0,lte=500"`
	MaxRetries        int     `json:"max_retries,omitempty" validate:"gte=0"`
	BackoffInitialMS  int     `json:"backoff_initial_ms,omitempty" validate:"gte=0"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" validate:"gte=0"`
	// RequestTimeout in seconds
	RequestTimeout int `json:"request_timeout,omitempty" validate:"gte=0"`
	MaxThreads     int `json:"max_threads,omitempty" validate:"gte=0"`
}

func (c *Config) Validate() error {
	err := utils.ErrExecSequential(
		func() error { return utils.Validate(c) },
		utils.ErrExecFormat("invalid start_date: %s", c.validateStartDate),
	)
	if err != nil {
		return err
	}

	c.setDefaults()
	return nil
}

func (c *Config) validateStartDate() error {
	if c.StartDate == "" {
		return nil
	}
	start, err := typeutils.ParseTime(c.StartDate)
	if err != nil {
		// reported by the iso8601 tag
		return nil
	}
	if start.After(time.Now()) {
		return fmt.Errorf("%s is in the future", c.StartDate)
	}
	return nil
}

func (c *Config) setDefaults() {
	c.APIURL = utils.Ternary(c.APIURL == "", constants.DefaultAPIURL, c.APIURL).(string)
	c.BoardLimit = utils.Ternary(c.BoardLimit == 0, constants.DefaultBoardLimit, c.BoardLimit).(int)
	c.ItemsPageSize = utils.Ternary(c.ItemsPageSize == 0, constants.DefaultItemsPageSize, c.ItemsPageSize).(int)
	c.MaxRetries = utils.Ternary(c.MaxRetries == 0, constants.DefaultMaxRetries, c.MaxRetries).(int)
	c.BackoffInitialMS = utils.Ternary(c.BackoffInitialMS == 0, int(constants.DefaultBackoffInitial/time.Millisecond), c.BackoffInitialMS).(int)
	c.RequestsPerSecond = utils.Ternary(c.RequestsPerSecond == 0, float64(constants.DefaultRequestsPerSec), c.RequestsPerSecond).(float64)
	c.RequestTimeout = utils.Ternary(c.RequestTimeout == 0, int(constants.DefaultRequestTimeout/time.Second), c.RequestTimeout).(int)
	c.MaxThreads = utils.Ternary(c.MaxThreads == 0, constants.DefaultThreadCount, c.MaxThreads).(int)
}

func (c *Config) backoffInitial() time.Duration {
	return time.Duration(c.BackoffInitialMS) * time.Millisecond
}

func (c *Config) requestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// specSchema describes the configuration keys for the spec command
func specSchema() *types.Schema {
	additional := false
	return &types.Schema{
		Type: types.TypeList{types.Object},
		Properties: map[string]*types.Schema{
			"api_token":           describe(types.NewSchema(types.String), "monday.com API token (required)"),
			"start_date":          describe(&types.Schema{Type: types.TypeList{types.String}, Format: types.DateTimeFormat}, "Earliest updated_at synced by incremental streams (required)"),
			"api_url":             describe(types.NullableString(), fmt.Sprintf("GraphQL endpoint, default %s", constants.DefaultAPIURL)),
			"api_version":         describe(types.NullableString(), "Value of the API-Version header"),
			"board_limit":         describe(types.NullableInteger(), fmt.Sprintf("Boards per page, default %d", constants.DefaultBoardLimit)),
			"items_page_size":     describe(types.NullableInteger(), fmt.Sprintf("Items per page, default %d", constants.DefaultItemsPageSize)),
			"max_retries":         describe(types.NullableInteger(), fmt.Sprintf("Retries of a failed request, default %d", constants.DefaultMaxRetries)),
			"backoff_initial_ms":  describe(types.NullableInteger(), "First retry delay in milliseconds, default 1000"),
			"requests_per_second": describe(types.NullableNumber(), fmt.Sprintf("Request rate limit, default %d", constants.DefaultRequestsPerSec)),
			"request_timeout":     describe(types.NullableInteger(), "Request timeout in seconds, default 60"),
			"max_threads":         describe(types.NullableInteger(), fmt.Sprintf("Concurrent schema discovery, default %d", constants.DefaultThreadCount)),
		},
		AdditionalProperties: &additional,
	}
}
