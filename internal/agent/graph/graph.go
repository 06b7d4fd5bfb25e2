// Package graph composes the travel support state machine: a primary
// assistant that answers directly or delegates to four specialized
// assistants, with dialog-stack routing, safe/sensitive tool partitions and
// an approval pause before sensitive actions.
package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/agent/graph/conversations"
	"github.com/tripdesk/server/internal/agent/graph/nodes"
	"github.com/tripdesk/server/internal/agent/graph/tools"
	"github.com/tripdesk/server/internal/agent/model"
	"github.com/tripdesk/server/internal/policy"
	"github.com/tripdesk/server/internal/travel"
	logx "github.com/tripdesk/server/pkg/logger"
)

// CheckPointStore is the suspension store used by the approval protocol. It
// extends the engine's store contract with existence checks and cleanup,
// which the Runner needs to police the pending-approval window.
type CheckPointStore interface {
	compose.CheckPointStore
	Exists(ctx context.Context, checkPointID string) (bool, error)
	Delete(ctx context.Context, checkPointID string) error
}

// Config holds everything needed to compose the full travel graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs the tool
// suite and the per-assistant chat models.
type Config struct {
	APIKey  string
	BaseURL string

	Model    model.AssistantModelConfig
	Approval model.ApprovalConfig
	Session  model.SessionDefaults
	Thread   model.ThreadConfig

	Store      *travel.Store
	Policies   *policy.Retriever
	PolicyTopK int

	Threads     model.ThreadRepository
	CheckPoints CheckPointStore
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	Models      *nodes.AssistantModels
	Suite       *tools.Suite
	UserInfo    nodes.UserInfoFetcher
	Threads     model.ThreadRepository
	CheckPoints compose.CheckPointStore

	// Window bounds the transcript slice prompted to the assistants; the
	// zero value is unbounded.
	Window conversations.Window

	// AutoApprove empties the set of pause points: sensitive tools execute
	// immediately, like safe ones.
	AutoApprove bool
}

// GraphBuilder handles the construction of the travel support graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[*model.Turn, *schema.Message]
}

// specializedWiring describes one specialized assistant's node group.
type specializedWiring struct {
	dialog        model.DialogState
	safeNode      string
	sensitiveNode string
}

var specializedNodes = []specializedWiring{
	{model.DialogUpdateFlight, nodes.NodeUpdateFlightSafeTools, nodes.NodeUpdateFlightSensitiveTools},
	{model.DialogBookCarRental, nodes.NodeBookCarRentalSafeTools, nodes.NodeBookCarRentalSensitiveTools},
	{model.DialogBookHotel, nodes.NodeBookHotelSafeTools, nodes.NodeBookHotelSensitiveTools},
	{model.DialogBookExcursion, nodes.NodeBookExcursionSafeTools, nodes.NodeBookExcursionSensitiveTools},
}

// BuildTravelGraph composes the tool suite and chat models, builds the graph,
// and returns a Runner.
func BuildTravelGraph(ctx context.Context, cfg Config) (*Runner, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("travel store is nil")
	}
	if cfg.Threads == nil {
		return nil, fmt.Errorf("thread repository is nil")
	}
	if cfg.CheckPoints == nil {
		return nil, fmt.Errorf("checkpoint store is nil")
	}

	suite := tools.NewSuite(cfg.Store, cfg.Policies, cfg.PolicyTopK)

	models, err := nodes.NewAssistantModels(ctx, nodes.AssistantModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   &cfg.Model,
	}, suite)
	if err != nil {
		return nil, err
	}

	runnable, err := BuildGraph(ctx, &GraphConfig{
		Models:      models,
		Suite:       suite,
		UserInfo:    cfg.Store,
		Threads:     cfg.Threads,
		CheckPoints: cfg.CheckPoints,
		Window:      conversations.NewWindow(cfg.Thread.MaxContextMessages),
		AutoApprove: cfg.Approval.AutoApproveSensitive,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Bool("auto_approve", cfg.Approval.AutoApproveSensitive).Msg("Travel graph built successfully")
	return &Runner{
		runnable:    runnable,
		threads:     cfg.Threads,
		checkpoints: cfg.CheckPoints,
		autoApprove: cfg.Approval.AutoApproveSensitive,
		defaults:    cfg.Session,
	}, nil
}

// BuildGraph constructs and returns the compiled travel support graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[*model.Turn, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.Models == nil {
		return nil, fmt.Errorf("assistant models are not initialized")
	}
	if config.Suite == nil {
		return nil, fmt.Errorf("tool suite is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[*model.Turn, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.TravelState {
				return &model.TravelState{}
			}),
		),
	}

	if err := builder.addNodes(ctx); err != nil {
		return nil, err
	}

	builder.addEdges()

	if err := builder.addBranches(ctx); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds the fetch node, the five assistants, the transition nodes and
// the tool execution nodes.
func (b *GraphBuilder) addNodes(ctx context.Context) error {
	b.graph.AddLambdaNode(nodes.NodeFetchUserInfo,
		nodes.NewFetchUserInfoNode(b.config.UserInfo),
		compose.WithStatePreHandler(nodes.NewFetchUserInfoPreHandler(b.config.Threads)),
	)

	b.graph.AddLambdaNode(nodes.NodePrimaryAssistant,
		nodes.NewAssistantNode(nodes.NodePrimaryAssistant, b.config.Models.Primary),
		compose.WithStatePreHandler(nodes.NewAssistantPreHandler(model.DialogPrimary, b.config.Window)),
		compose.WithStatePostHandler(nodes.NewAssistantPostHandler(nodes.NodePrimaryAssistant, b.config.Threads)),
	)

	if err := b.addToolRunner(ctx, nodes.NodePrimaryTools, b.config.Suite.Primary); err != nil {
		return err
	}

	b.graph.AddLambdaNode(nodes.NodeEnterSkill, nodes.NewEnterSkillNode(b.config.Threads))
	b.graph.AddLambdaNode(nodes.NodeLeaveSkill, nodes.NewLeaveSkillNode(b.config.Threads))

	for _, w := range specializedNodes {
		assistantNode := nodes.AssistantNodeFor(w.dialog)
		b.graph.AddLambdaNode(assistantNode,
			nodes.NewAssistantNode(assistantNode, b.config.Models.ByDialog(w.dialog)),
			compose.WithStatePreHandler(nodes.NewAssistantPreHandler(w.dialog, b.config.Window)),
			compose.WithStatePostHandler(nodes.NewAssistantPostHandler(assistantNode, b.config.Threads)),
		)

		partition, ok := b.config.Suite.PartitionFor(w.dialog)
		if !ok {
			return fmt.Errorf("no tool partition for assistant %q", w.dialog)
		}
		if err := b.addToolRunner(ctx, w.safeNode, partition.Safe); err != nil {
			return err
		}
		if err := b.addToolRunner(ctx, w.sensitiveNode, partition.Sensitive); err != nil {
			return err
		}
	}
	return nil
}

func (b *GraphBuilder) addToolRunner(ctx context.Context, name string, ts []tool.InvokableTool) error {
	node, err := nodes.NewToolRunnerNode(ctx, name, ts, b.config.Threads)
	if err != nil {
		logx.Error().Err(err).Str("node", name).Msg("Failed to create tool runner node")
		return fmt.Errorf("failed to create tool runner node %s: %w", name, err)
	}
	b.graph.AddLambdaNode(name, node)
	return nil
}

// addEdges creates the unconditional flow connections: tool nodes loop back
// into their owning assistant, leave_skill hands back to the primary one.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeFetchUserInfo},
		{nodes.NodePrimaryTools, nodes.NodePrimaryAssistant},
		{nodes.NodeLeaveSkill, nodes.NodePrimaryAssistant},
	}
	for _, w := range specializedNodes {
		assistantNode := nodes.AssistantNodeFor(w.dialog)
		edges = append(edges,
			[2]string{w.safeNode, assistantNode},
			[2]string{w.sensitiveNode, assistantNode},
		)
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the conditional routing: dialog-stack dispatch after the
// fetch and entry nodes, and a per-assistant router after every assistant.
func (b *GraphBuilder) addBranches(ctx context.Context) error {
	workflowBranch := compose.NewGraphBranch(nodes.NewActiveAssistantCondition(), nodes.AssistantNodeSet())
	if err := b.graph.AddBranch(nodes.NodeFetchUserInfo, workflowBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding workflow branch")
		return fmt.Errorf("error adding workflow branch: %w", err)
	}

	enterBranch := compose.NewGraphBranch(nodes.NewActiveAssistantCondition(), nodes.AssistantNodeSet())
	if err := b.graph.AddBranch(nodes.NodeEnterSkill, enterBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding enter_skill branch")
		return fmt.Errorf("error adding enter_skill branch: %w", err)
	}

	primaryBranch := compose.NewGraphBranch(
		nodes.NewPrimaryAssistantCondition(),
		map[string]bool{
			nodes.NodeEnterSkill:   true,
			nodes.NodePrimaryTools: true,
			compose.END:            true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodePrimaryAssistant, primaryBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding primary assistant branch")
		return fmt.Errorf("error adding primary assistant branch: %w", err)
	}

	for _, w := range specializedNodes {
		partition, _ := b.config.Suite.PartitionFor(w.dialog)
		condition, err := nodes.NewSpecializedAssistantCondition(ctx, partition, w.safeNode, w.sensitiveNode)
		if err != nil {
			return fmt.Errorf("error building %s router: %w", w.dialog, err)
		}
		branch := compose.NewGraphBranch(condition, map[string]bool{
			nodes.NodeLeaveSkill: true,
			w.safeNode:           true,
			w.sensitiveNode:      true,
			compose.END:          true,
		})
		if err := b.graph.AddBranch(nodes.AssistantNodeFor(w.dialog), branch); err != nil {
			logx.Error().Err(err).Str("assistant", w.dialog.String()).Msg("Error adding assistant branch")
			return fmt.Errorf("error adding %s branch: %w", w.dialog, err)
		}
	}
	return nil
}

// compile finalizes the graph, registering the sensitive tool nodes as pause
// points unless auto-approve is on.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.Turn, *schema.Message], error) {
	opts := []compose.GraphCompileOption{
		// enough steps for a handoff plus several tool round trips in one turn
		compose.WithMaxRunSteps(40),
	}
	if b.config.CheckPoints != nil {
		opts = append(opts, compose.WithCheckPointStore(b.config.CheckPoints))
	}
	if !b.config.AutoApprove {
		opts = append(opts, compose.WithInterruptBeforeNodes(nodes.SensitiveToolNodes))
	}

	runnable, err := b.graph.Compile(ctx, opts...)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
