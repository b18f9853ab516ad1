package service

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// CatalogEntry 远端目录服务返回的条目
type CatalogEntry struct {
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	InheritancePattern string   `json:"inheritance_pattern"`
	Prevalence         *float64 `json:"prevalence"`
	Penetrance         *float64 `json:"penetrance"`
	IsHereditary       bool     `json:"is_hereditary"`
	Description        string   `json:"description"`
}

// CatalogResponse 目录服务响应
type CatalogResponse struct {
	Status  int            `json:"status"`
	Msg     string         `json:"msg"`
	Entries []CatalogEntry `json:"entries"`
}

// CatalogClient 基因疾病目录服务客户端
type CatalogClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewCatalogClient 创建目录服务客户端
func NewCatalogClient(baseURL, apiKey string, logger *zap.Logger) *CatalogClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("X-API-Key", apiKey)
	}

	return &CatalogClient{
		httpClient: client,
		logger:     logger,
	}
}

// FetchConditions 拉取全量目录
func (c *CatalogClient) FetchConditions() ([]CatalogEntry, error) {
	c.logger.Info("Fetching genetic condition catalog")

	var response CatalogResponse
	resp, err := c.httpClient.R().
		SetResult(&response).
		Get("/catalog/genetic-conditions")

	if err != nil {
		c.logger.Error("Catalog API call failed", zap.Error(err))
		return nil, fmt.Errorf("failed to call catalog API: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("catalog API returned HTTP %d", resp.StatusCode())
	}
	if response.Status != 0 {
		c.logger.Error("Catalog API returned error",
			zap.Int("status", response.Status),
			zap.String("msg", response.Msg),
		)
		return nil, fmt.Errorf("catalog API error: %s", response.Msg)
	}

	c.logger.Info("Catalog fetched", zap.Int("entry_count", len(response.Entries)))
	return response.Entries, nil
}
