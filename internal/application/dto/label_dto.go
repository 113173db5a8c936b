package dto

// FinalizeResponse ids resultantes de una finalización. LabelSnapshotID es
// nulo solo en eventos históricos previos al motor de etiquetas.
type FinalizeResponse struct {
	ServiceEventID  string  `json:"service_event_id"`
	LabelSnapshotID *string `json:"label_snapshot_id"`
	AlreadyExisted  bool    `json:"already_existed"`
}
