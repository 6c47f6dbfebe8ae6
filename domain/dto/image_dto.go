package dto

type GenerateImagesReq struct {
	Composer         string `json:"composer" binding:"omitempty,oneof=canvas ai template"`
	TemplateID       string `json:"templateId" binding:"omitempty,max=100"`
	TemplateImageURL string `json:"templateImageUrl" binding:"omitempty,url"`
}

type GenerateImagesRes struct {
	Images map[string]string `json:"images"`
	Failed []string          `json:"failed"`
}
