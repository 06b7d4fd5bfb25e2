// Package tools defines the business tools available to the travel support
// assistants and their safe/sensitive partitions.
package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/tripdesk/server/internal/agent/model"
	"github.com/tripdesk/server/internal/policy"
	"github.com/tripdesk/server/internal/travel"
)

// Partition splits an assistant's tools into safe (read-only) and sensitive
// (mutating) sets. Sensitive tools are the ones eligible for the
// human-approval pause.
type Partition struct {
	Safe      []tool.InvokableTool
	Sensitive []tool.InvokableTool
}

// All returns the full tool set of the partition, safe tools first.
func (p Partition) All() []tool.InvokableTool {
	out := make([]tool.InvokableTool, 0, len(p.Safe)+len(p.Sensitive))
	out = append(out, p.Safe...)
	return append(out, p.Sensitive...)
}

// SafeNames returns the set of safe tool names, used by the routers to decide
// between the safe and sensitive execution nodes.
func (p Partition) SafeNames(ctx context.Context) (map[string]bool, error) {
	names := make(map[string]bool, len(p.Safe))
	for _, t := range p.Safe {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		names[info.Name] = true
	}
	return names, nil
}

// Suite holds every assistant's tool partition plus the primary assistant's
// own tools.
type Suite struct {
	Flight    Partition
	CarRental Partition
	Hotel     Partition
	Excursion Partition
	Primary   []tool.InvokableTool
}

// NewSuite wires the business tools to their backing services. The policy
// retriever may be nil, in which case the primary assistant loses its
// lookup_policy tool but everything else keeps working.
func NewSuite(store *travel.Store, policies *policy.Retriever, policyTopK int) *Suite {
	s := &Suite{
		Flight: Partition{
			Safe: invokables(createSearchFlightsTool(store)),
			Sensitive: invokables(
				createUpdateTicketTool(store),
				createCancelTicketTool(store),
			),
		},
		CarRental: Partition{
			Safe: invokables(createSearchCarRentalsTool(store)),
			Sensitive: invokables(
				createBookCarRentalTool(store),
				createUpdateCarRentalTool(store),
				createCancelCarRentalTool(store),
			),
		},
		Hotel: Partition{
			Safe: invokables(createSearchHotelsTool(store)),
			Sensitive: invokables(
				createBookHotelTool(store),
				createUpdateHotelTool(store),
				createCancelHotelTool(store),
			),
		},
		Excursion: Partition{
			Safe: invokables(createSearchExcursionsTool(store)),
			Sensitive: invokables(
				createBookExcursionTool(store),
				createUpdateExcursionTool(store),
				createCancelExcursionTool(store),
			),
		},
		Primary: invokables(createSearchFlightsTool(store)),
	}
	if policies != nil {
		s.Primary = append(s.Primary, invokables(createLookupPolicyTool(policies, policyTopK))...)
	}
	return s
}

// PartitionFor returns the tool partition owned by a specialized assistant.
func (s *Suite) PartitionFor(d model.DialogState) (Partition, bool) {
	switch d {
	case model.DialogUpdateFlight:
		return s.Flight, true
	case model.DialogBookCarRental:
		return s.CarRental, true
	case model.DialogBookHotel:
		return s.Hotel, true
	case model.DialogBookExcursion:
		return s.Excursion, true
	}
	return Partition{}, false
}

// Infos collects the ToolInfo of each tool for model binding.
func Infos(ctx context.Context, ts []tool.InvokableTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// NewLookup indexes tools by name for the execution nodes.
func NewLookup(ctx context.Context, ts []tool.InvokableTool) (map[string]tool.InvokableTool, error) {
	byName := make(map[string]tool.InvokableTool, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		byName[info.Name] = t
	}
	return byName, nil
}

func invokables(ts ...tool.BaseTool) []tool.InvokableTool {
	out := make([]tool.InvokableTool, 0, len(ts))
	for _, t := range ts {
		inv, ok := t.(tool.InvokableTool)
		if !ok {
			// all tools in this package are built with utils.NewTool,
			// which always yields an invokable implementation
			panic(fmt.Sprintf("tool %T is not invokable", t))
		}
		out = append(out, inv)
	}
	return out
}
