package panel

import (
	"encoding/json"
	"fmt"
)

// Serialization form: {"history":[{"phase":...,"state":{...}}],"isOpen":bool}.
// Only JSON-serializable payload fields survive; live verification handles
// are dropped on encode and re-looked-up on decode.

type recordJSON struct {
	History []entryJSON `json:"history"`
	IsOpen  bool        `json:"isOpen"`
}

type entryJSON struct {
	Phase Phase     `json:"phase"`
	State stateJSON `json:"state"`
}

type stateJSON struct {
	UserID         string `json:"userId,omitempty"`
	Address        string `json:"address,omitempty"`
	WidgetID       string `json:"widgetId,omitempty"`
	RootID         string `json:"rootId,omitempty"`
	InitialEventID string `json:"initialEventId,omitempty"`
	RoomID         string `json:"roomId,omitempty"`
}

func encodeState(state State) stateJSON {
	switch s := state.(type) {
	case MemberState:
		return stateJSON{UserID: s.UserID}
	case ThreePIDMemberState:
		return stateJSON{Address: s.Address}
	case VerificationState:
		// The request handle does not persist.
		return stateJSON{UserID: s.UserID}
	case WidgetState:
		return stateJSON{WidgetID: s.WidgetID}
	case ThreadState:
		return stateJSON{RootID: s.RootID, InitialEventID: s.InitialEventID}
	case GroupMemberState:
		return stateJSON{UserID: s.UserID}
	case GroupRoomState:
		return stateJSON{RoomID: s.RoomID}
	default:
		return stateJSON{}
	}
}

func decodeState(phase Phase, s stateJSON, verifier VerificationLookup) State {
	switch phase {
	case PhaseRoomMemberInfo:
		if s.UserID == "" {
			return nil
		}
		return MemberState{UserID: s.UserID}
	case PhaseRoom3pidMemberInfo:
		if s.Address == "" {
			return nil
		}
		return ThreePIDMemberState{Address: s.Address}
	case PhaseEncryptionPanel:
		if s.UserID == "" {
			return nil
		}
		state := VerificationState{UserID: s.UserID}
		if verifier != nil {
			state.Request = verifier.PendingFor(s.UserID)
		}
		return state
	case PhaseWidget:
		if s.WidgetID == "" {
			return nil
		}
		return WidgetState{WidgetID: s.WidgetID}
	case PhaseThreadView, PhaseThreadPanel:
		if s.RootID == "" && s.InitialEventID == "" {
			return nil
		}
		return ThreadState{RootID: s.RootID, InitialEventID: s.InitialEventID}
	case PhaseGroupMemberInfo:
		if s.UserID == "" {
			return nil
		}
		return GroupMemberState{UserID: s.UserID}
	case PhaseGroupRoomInfo:
		if s.RoomID == "" {
			return nil
		}
		return GroupRoomState{RoomID: s.RoomID}
	default:
		return nil
	}
}

// encodeRecord serializes a record to its settings value.
func encodeRecord(rec *Record) (string, error) {
	if rec == nil {
		return "", nil
	}

	out := recordJSON{
		History: make([]entryJSON, len(rec.History)),
		IsOpen:  rec.IsOpen,
	}
	for i, e := range rec.History {
		out.History[i] = entryJSON{Phase: e.Phase, State: encodeState(e.State)}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal panel record: %w", err)
	}
	return string(data), nil
}

// decodeRecord parses a settings value back into a record. Entries with
// unrecognized phases are dropped rather than failing the whole record.
func decodeRecord(value string, verifier VerificationLookup) (*Record, error) {
	if value == "" {
		return nil, nil
	}

	var in recordJSON
	if err := json.Unmarshal([]byte(value), &in); err != nil {
		return nil, fmt.Errorf("unmarshal panel record: %w", err)
	}

	rec := &Record{IsOpen: in.IsOpen}
	for _, e := range in.History {
		if !e.Phase.Valid() {
			continue
		}
		rec.History = append(rec.History, Entry{
			Phase: e.Phase,
			State: decodeState(e.Phase, e.State, verifier),
		})
	}
	if len(rec.History) == 0 {
		return nil, nil
	}
	return rec, nil
}
