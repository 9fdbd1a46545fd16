package types

// CaptureTarget is the resolved output location for one section. The name
// is derived deterministically from sanitized display text; collisions
// within one folder are not de-duplicated (later captures overwrite).
type CaptureTarget struct {
	Folder      string
	LogicalName string
}
