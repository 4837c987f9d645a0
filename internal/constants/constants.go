package constants

import "time"

// MaxTimelineMessages limits how many recent messages the timeline renders.
const MaxTimelineMessages = 200

// MemberFilterMaxDistance is the largest levenshtein distance still counted
// as a fuzzy match when filtering the member list.
const MemberFilterMaxDistance = 3

// AssistantRequestTimeout caps a single assistant completion request.
const AssistantRequestTimeout = 2 * time.Minute

// AssistantContextMessages limits how many recent messages feed the assistant.
const AssistantContextMessages = 20

// PanelDefaultWidth is the default column width of the right panel.
const PanelDefaultWidth = 36

// PanelMinTerminalWidth hides the panel entirely below this terminal width.
const PanelMinTerminalWidth = 80

// SettingsKeyPanelGlobal is the device-scoped settings key holding the
// cross-room panel record.
const SettingsKeyPanelGlobal = "panel.global"

// SettingsKeyPanelRoom is the room-device-scoped settings key holding a
// single room's panel record.
const SettingsKeyPanelRoom = "panel.room"
