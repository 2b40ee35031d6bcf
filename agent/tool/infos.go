package tool

import (
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/shopdesk-agent/agent/contract"
)

// Infos describes the tool layer for prompts and function-calling models.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: contractx.ToolProductSearch,
			Desc: "Search the catalog by free-text query, maximum price, and tags.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query":     {Type: schema.String, Desc: "Search terms such as occasion, style, or fabric"},
				"price_max": {Type: schema.Number, Desc: "Maximum price in USD", Required: true},
				"tags": {
					Type:     schema.Array,
					Desc:     "Catalog tags to match",
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
				},
			}),
		},
		{
			Name: contractx.ToolSizeRecommender,
			Desc: "Recommend one size from a stated fit preference or a two-size range such as M/L.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"preference": {Type: schema.String, Desc: "Customer's own words about fit or size", Required: true},
			}),
		},
		{
			Name: contractx.ToolETA,
			Desc: "Estimate shipping days for a postal code.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"zip_code": {Type: schema.String, Desc: "Destination postal code", Required: true},
			}),
		},
		{
			Name: contractx.ToolOrderLookup,
			Desc: "Find an order by order id and the email used to place it.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {Type: schema.String, Desc: "Order id such as A1003", Required: true},
				"email":    {Type: schema.String, Desc: "Email on the order", Required: true},
			}),
		},
		{
			Name: contractx.ToolOrderCancel,
			Desc: "Check whether an order is still inside the cancellation window.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {Type: schema.String, Desc: "Order id such as A1003", Required: true},
				"email":    {Type: schema.String, Desc: "Email on the order", Required: true},
			}),
		},
	}
}
