package amazonads

import (
	"fmt"
	"time"

	"github.com/adlumen/amzads/internal/core/domain"
)

// StreamKind selects the access pattern for a stream.
type StreamKind string

const (
	// KindList streams page through a synchronous list endpoint.
	KindList StreamKind = "list"
	// KindReport streams run the asynchronous report pipeline.
	KindReport StreamKind = "report"
)

// ParentContext carries scoping keys extracted from a parent stream's
// records, e.g. campaignId for ad groups.
type ParentContext map[string]string

// Stream describes one extractable resource as a catalog entry. Behaviour
// differences between streams live in this table, not in per-stream types.
type Stream struct {
	Name string
	Kind StreamKind

	// List streams.
	Method       string
	Path         string
	MediaType    string
	RecordsPath  string
	ParentStream string
	BuildBody    func(cfg *Config, cur *PageCursor, parent ParentContext) any
	ChildContext func(rec domain.Record) ParentContext

	// Report streams.
	ReportSpec func(cfg *Config, now time.Time) *reportRequest
}

// listRequest is the shared body shape for entity list endpoints.
type listRequest struct {
	StartIndex      int        `json:"startIndex"`
	Count           int        `json:"count"`
	AdProduct       string     `json:"adProduct"`
	State           string     `json:"state,omitempty"`
	CampaignID      string     `json:"campaignId,omitempty"`
	AdGroupID       string     `json:"adGroupId,omitempty"`
	StartDateFilter *dateRange `json:"startDateFilter,omitempty"`
}

type dateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

const (
	adProductSponsoredProducts = "SPONSORED_PRODUCTS"

	// allStates requests every entity regardless of lifecycle state.
	allStates = "enabled,paused,archived"

	dateLayout = "2006-01-02"
)

// Streams is the catalog of extractable streams, parents before children.
var Streams = []*Stream{
	{
		Name:        "campaigns",
		Kind:        KindList,
		Method:      "POST",
		Path:        "/sp/campaigns/list",
		MediaType:   "application/vnd.spcampaign.v3+json",
		RecordsPath: "campaigns",
		BuildBody: func(cfg *Config, cur *PageCursor, _ ParentContext) any {
			now := time.Now()
			return listRequest{
				StartIndex: cur.Offset,
				Count:      cur.PageSize,
				AdProduct:  adProductSponsoredProducts,
				State:      allStates,
				StartDateFilter: &dateRange{
					StartDate: cfg.startDate(now).Format(dateLayout),
					EndDate:   now.Format(dateLayout),
				},
			}
		},
		ChildContext: func(rec domain.Record) ParentContext {
			id := rec.Get("campaignId").String()
			if id == "" {
				return nil
			}
			return ParentContext{"campaignId": id}
		},
	},
	{
		Name:         "ad_groups",
		Kind:         KindList,
		Method:       "POST",
		Path:         "/sp/adGroups/list",
		MediaType:    "application/vnd.spadGroup.v3+json",
		RecordsPath:  "adGroups",
		ParentStream: "campaigns",
		BuildBody: func(cfg *Config, cur *PageCursor, parent ParentContext) any {
			return listRequest{
				StartIndex: cur.Offset,
				Count:      cur.PageSize,
				AdProduct:  adProductSponsoredProducts,
				State:      allStates,
				CampaignID: parent["campaignId"],
			}
		},
		ChildContext: func(rec domain.Record) ParentContext {
			id := rec.Get("adGroupId").String()
			if id == "" {
				return nil
			}
			return ParentContext{
				"adGroupId":  id,
				"campaignId": rec.Get("campaignId").String(),
			}
		},
	},
	{
		Name:         "targets",
		Kind:         KindList,
		Method:       "POST",
		Path:         "/sp/targets/list",
		MediaType:    "application/vnd.sptargetingClause.v3+json",
		RecordsPath:  "targetingClauses",
		ParentStream: "ad_groups",
		BuildBody: func(cfg *Config, cur *PageCursor, parent ParentContext) any {
			return listRequest{
				StartIndex: cur.Offset,
				Count:      cur.PageSize,
				AdProduct:  adProductSponsoredProducts,
				State:      allStates,
				AdGroupID:  parent["adGroupId"],
			}
		},
	},
	{
		Name:         "ads",
		Kind:         KindList,
		Method:       "POST",
		Path:         "/sp/productAds/list",
		MediaType:    "application/vnd.spproductAd.v3+json",
		RecordsPath:  "productAds",
		ParentStream: "ad_groups",
		BuildBody: func(cfg *Config, cur *PageCursor, parent ParentContext) any {
			return listRequest{
				StartIndex: cur.Offset,
				Count:      cur.PageSize,
				AdProduct:  adProductSponsoredProducts,
				State:      allStates,
				AdGroupID:  parent["adGroupId"],
			}
		},
	},
	{
		Name: "search_term_reports",
		Kind: KindReport,
		ReportSpec: reportSpec("spSearchTerm", []string{"searchTerm"}, []string{
			"date", "campaignId", "campaignName", "adGroupId", "adGroupName",
			"searchTerm", "impressions", "clicks", "cost",
			"purchases14d", "sales14d",
		}),
	},
	{
		Name: "advertised_product_reports",
		Kind: KindReport,
		ReportSpec: reportSpec("spAdvertisedProduct", []string{"advertiser"}, []string{
			"date", "campaignName", "campaignId", "adGroupName", "adGroupId",
			"advertisedAsin", "advertisedSku", "impressions", "clicks", "cost",
			"purchases14d", "sales14d", "unitsSoldClicks14d",
		}),
	},
	{
		Name: "purchased_product_reports",
		Kind: KindReport,
		ReportSpec: reportSpec("spPurchasedProduct", []string{"asin"}, []string{
			"date", "campaignId", "campaignName", "adGroupId",
			"asin", "purchasedAsin", "purchases14d", "sales14d",
			"unitsSoldClicks14d",
		}),
	},
	{
		Name: "gross_and_invalid_traffic_reports",
		Kind: KindReport,
		ReportSpec: reportSpec("spGrossAndInvalids", []string{"campaign"}, []string{
			"date", "campaignId", "campaignName",
			"grossImpressions", "grossClickThroughs",
			"invalidImpressions", "invalidClickThroughs",
		}),
	},
}

// reportSpec returns a builder for a daily gzip JSON report configuration.
func reportSpec(reportTypeID string, groupBy, columns []string) func(cfg *Config, now time.Time) *reportRequest {
	return func(cfg *Config, now time.Time) *reportRequest {
		return &reportRequest{
			StartDate: cfg.startDate(now).Format(dateLayout),
			EndDate:   now.Format(dateLayout),
			Configuration: reportConfiguration{
				AdProduct:    adProductSponsoredProducts,
				GroupBy:      groupBy,
				Columns:      columns,
				ReportTypeID: reportTypeID,
				TimeUnit:     "DAILY",
				Format:       "GZIP_JSON",
			},
		}
	}
}

// StreamByName looks up a catalog entry.
func StreamByName(name string) (*Stream, error) {
	for _, s := range Streams {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStream, name)
}

// StreamNames returns all catalog stream names in sync order.
func StreamNames() []string {
	names := make([]string, len(Streams))
	for i, s := range Streams {
		names[i] = s.Name
	}
	return names
}
