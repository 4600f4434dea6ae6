// Package grpc serves the draft commands and event stream over gRPC.
package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/draft"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/pubsub"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/session"
)

// Commands accepted by Execute
const (
	CommandCreate           = "create"
	CommandDelete           = "delete"
	CommandPick             = "pick"
	CommandPlaceOnField     = "place_on_field"
	CommandPlaceOnBench     = "place_on_bench"
	CommandSwapFieldSlots   = "swap_field_slots"
	CommandMoveBenchToField = "move_bench_to_field"
	CommandMoveFieldToBench = "move_field_to_bench"
	CommandSetFormation     = "set_formation"
	CommandUndo             = "undo"
	CommandFinishTurn       = "finish_turn"
	CommandFinishDraft      = "finish_draft"
)

// Server implements the gRPC DraftService
type Server struct {
	drafts *session.Service
	pubsub *pubsub.PubSub
}

// NewServer creates a new gRPC server
func NewServer(drafts *session.Service, ps *pubsub.PubSub) *Server {
	return &Server{
		drafts: drafts,
		pubsub: ps,
	}
}

// GetDraft returns the view of {draftId}
func (s *Server) GetDraft(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := stringField(req, "draftId", true)
	if err != nil {
		return nil, err
	}
	logger.Debug("gRPC: Getting draft", "draft_id", id)

	view, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"draftId": id, "view": view})
}

// ListDrafts returns every stored draft summary under "drafts"
func (s *Server) ListDrafts(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.drafts.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"drafts": list})
}

// Execute runs {command} with {args} against {draftId}
func (s *Server) Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	command, err := stringField(req, "command", true)
	if err != nil {
		return nil, err
	}
	args := req.GetFields()["args"].GetStructValue()
	if args == nil {
		args = &structpb.Struct{}
	}

	if command == CommandCreate {
		return s.create(ctx, args)
	}

	id, err := stringField(req, "draftId", true)
	if err != nil {
		return nil, err
	}
	logger.Info("gRPC: Executing draft command", "command", command, "draft_id", id)

	if command == CommandDelete {
		if err := s.drafts.Delete(ctx, id); err != nil {
			return nil, toStatus(err)
		}
		return toStruct(map[string]interface{}{"draftId": id, "deleted": true})
	}

	view, err := s.dispatch(ctx, id, command, args)
	if err != nil {
		logger.Debug("gRPC: Draft command failed", "command", command, "draft_id", id, "error", err)
		return nil, err
	}
	return toStruct(map[string]interface{}{"draftId": id, "view": view})
}

func (s *Server) create(ctx context.Context, args *structpb.Struct) (*structpb.Struct, error) {
	managers := []string{}
	for _, v := range args.GetFields()["managers"].GetListValue().GetValues() {
		name, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, invalidArg("managers must be a list of names")
		}
		managers = append(managers, name.StringValue)
	}
	rounds, err := intField(args, "maxRounds", false)
	if err != nil {
		return nil, err
	}
	formationName, err := stringField(args, "formation", false)
	if err != nil {
		return nil, err
	}

	id, view, err := s.drafts.Create(ctx, session.CreateRequest{Managers: managers, MaxRounds: rounds, Formation: formationName})
	if err != nil {
		return nil, toStatus(err)
	}
	logger.Info("gRPC: Draft created", "draft_id", id)
	return toStruct(map[string]interface{}{"draftId": id, "view": view})
}

func (s *Server) dispatch(ctx context.Context, id, command string, args *structpb.Struct) (draft.View, error) {
	var (
		view draft.View
		err  error
	)
	switch command {
	case CommandPick:
		var playerID int
		if playerID, err = intField(args, "playerId", true); err != nil {
			return view, err
		}
		view, err = s.drafts.Pick(ctx, id, playerID)
	case CommandPlaceOnField:
		var slot string
		if slot, err = stringField(args, "slotId", true); err != nil {
			return view, err
		}
		view, err = s.drafts.PlaceOnField(ctx, id, slot)
	case CommandPlaceOnBench:
		view, err = s.drafts.PlaceOnBench(ctx, id)
	case CommandSwapFieldSlots:
		var from, to string
		if from, err = stringField(args, "fromSlotId", true); err != nil {
			return view, err
		}
		if to, err = stringField(args, "toSlotId", true); err != nil {
			return view, err
		}
		view, err = s.drafts.SwapFieldSlots(ctx, id, from, to)
	case CommandMoveBenchToField, CommandMoveFieldToBench:
		var (
			playerID int
			slot     string
		)
		if playerID, err = intField(args, "playerId", true); err != nil {
			return view, err
		}
		if slot, err = stringField(args, "slotId", true); err != nil {
			return view, err
		}
		if command == CommandMoveBenchToField {
			view, err = s.drafts.MoveBenchToField(ctx, id, playerID, slot)
		} else {
			view, err = s.drafts.MoveFieldToBench(ctx, id, playerID, slot)
		}
	case CommandSetFormation:
		var name string
		if name, err = stringField(args, "formation", true); err != nil {
			return view, err
		}
		view, err = s.drafts.SetFormation(ctx, id, name)
	case CommandUndo:
		view, err = s.drafts.Undo(ctx, id)
	case CommandFinishTurn:
		view, err = s.drafts.FinishTurn(ctx, id)
	case CommandFinishDraft:
		view, err = s.drafts.FinishEarly(ctx, id)
	default:
		return view, invalidArg(fmt.Sprintf("unknown command %q", command))
	}
	if err != nil {
		return view, toStatus(err)
	}
	return view, nil
}

// StreamEvents sends every event of {draftId}, or of all drafts when it is empty
func (s *Server) StreamEvents(req *structpb.Struct, stream DraftService_StreamEventsServer) error {
	draftID, err := stringField(req, "draftId", false)
	if err != nil {
		return err
	}

	events := s.pubsub.Subscribe()
	defer s.pubsub.Unsubscribe(events)
	logger.Debug("gRPC: Event stream opened", "draft_id", draftID)

	for {
		select {
		case <-stream.Context().Done():
			logger.Debug("gRPC: Event stream closed", "draft_id", draftID)
			return nil
		case ev, ok := <-events:
			if !ok {
				return status.Error(codes.Unavailable, "event bus closed")
			}
			if !ev.Matches(draftID) {
				continue
			}
			msg, err := toStruct(ev)
			if err != nil {
				logger.Warn("gRPC: Failed to encode event", "type", ev.Type, "error", err)
				continue
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

// toStatus maps session and engine errors to gRPC codes, prefixing the stable code
func toStatus(err error) error {
	code, kind := session.Classify(err)
	c := codes.Internal
	switch kind {
	case session.KindNotFound:
		c = codes.NotFound
	case session.KindInvalid:
		c = codes.InvalidArgument
	case session.KindConflict:
		c = codes.FailedPrecondition
	default:
		logger.Error("gRPC: Draft command failed", "error", err)
	}
	return status.Errorf(c, "%s: %v", code, err)
}

func invalidArg(msg string) error {
	return status.Errorf(codes.InvalidArgument, "INVALID_REQUEST: %s", msg)
}

// toStruct converts v through its JSON form
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func stringField(s *structpb.Struct, key string, required bool) (string, error) {
	v, ok := s.GetFields()[key]
	if !ok || isNull(v) {
		if required {
			return "", invalidArg(key + " is required")
		}
		return "", nil
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", invalidArg(key + " must be a string")
	}
	if required && str.StringValue == "" {
		return "", invalidArg(key + " is required")
	}
	return str.StringValue, nil
}

func intField(s *structpb.Struct, key string, required bool) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok || isNull(v) {
		if required {
			return 0, invalidArg(key + " is required")
		}
		return 0, nil
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, invalidArg(key + " must be a number")
	}
	f := num.NumberValue
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, invalidArg(key + " must be an integer")
	}
	return int(f), nil
}

func isNull(v *structpb.Value) bool {
	_, null := v.GetKind().(*structpb.Value_NullValue)
	return v.GetKind() == nil || null
}
