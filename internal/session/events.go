package session

import (
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/draft"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/pubsub"
)

// relay turns engine events into bus events for draft id
func (s *Service) relay(id string, ev draft.Event) {
	switch ev := ev.(type) {
	case draft.PlayerPicked:
		s.publish(id, pubsub.EventPick, map[string]interface{}{
			"managerIndex": ev.ManagerIndex,
			"managerName":  ev.ManagerName,
			"playerId":     ev.Player.ID,
			"displayName":  ev.DisplayName,
			"rating":       ev.Player.OverallRating,
		})
	case draft.BoardChanged:
		s.publish(id, pubsub.EventBoard, map[string]interface{}{
			"managerIndex": ev.ManagerIndex,
			"undo":         ev.Undo,
			"action": map[string]interface{}{
				"kind":          ev.Action.Kind,
				"playerId":      ev.Action.PlayerID,
				"slotId":        ev.Action.SlotID,
				"targetSlotId":  ev.Action.TargetSlotID,
				"otherPlayerId": ev.Action.OtherPlayerID,
				"formation":     ev.Action.Formation,
			},
		})
	case draft.TurnFinished:
		ids := make([]int, 0, len(ev.Picks))
		for _, p := range ev.Picks {
			ids = append(ids, p.PlayerID)
		}
		s.publish(id, pubsub.EventTurn, map[string]interface{}{
			"managerIndex":     ev.ManagerIndex,
			"managerName":      ev.ManagerName,
			"round":            ev.Round,
			"playerIds":        ids,
			"nextManagerIndex": ev.Next.ManagerIndex,
			"nextRound":        ev.Next.Round,
		})
	case draft.DraftCompleted:
		s.publish(id, pubsub.EventDraftComplete, map[string]interface{}{
			"early": ev.Early,
			"round": ev.Turn.Round,
		})
	}
}

func (s *Service) publish(id, eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(pubsub.Event{Type: eventType, DraftID: id, Payload: payload})
}
