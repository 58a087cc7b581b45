package request

const MaxSubjectLength = 200

type GetResourcesRequest struct {
	Subject string `json:"subject" binding:"required,max=200" example:"Rust"`
}
