package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/policy"
)

const ToolLookupPolicy = "lookup_policy"

type LookupPolicyInput struct {
	Query string `json:"query"`
}

func createLookupPolicyTool(retriever *policy.Retriever, topK int) tool.BaseTool {
	if topK <= 0 {
		topK = 2
	}
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolLookupPolicy,
			Desc: "Consult the company policies to check whether certain options are permitted. Use this before making any flight changes or performing other write operations.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "The policy question, e.g. 'can I cancel a non-refundable ticket?'",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *LookupPolicyInput) (string, error) {
			docs, err := retriever.Query(ctx, in.Query, topK)
			if err != nil {
				return "", err
			}
			return strings.Join(docs, "\n\n"), nil
		},
	)
}
