package todos

// CreateRequest is the todo creation payload. IsDone is optional and
// defaults to false; a pointer distinguishes "absent" from "false", and the
// JSON decoder rejects non-boolean values outright.
type CreateRequest struct {
	Title  string `json:"title" example:"buy milk"`
	IsDone *bool  `json:"isDone,omitempty" example:"false"`
}

// UpdateRequest is the todo update payload. Both fields are required;
// IsDone stays a pointer so that an absent flag is distinguishable from an
// explicit false.
type UpdateRequest struct {
	Title  string `json:"title" example:"buy milk"`
	IsDone *bool  `json:"isDone" example:"true"`
}
