package dto

import "propgen/domain/model"

type SocialContentReq struct {
	Platform     string              `json:"platform" binding:"required,oneof=facebook instagram tiktok"`
	PropertyData model.ListingFields `json:"propertyData" binding:"required"`
}

type SocialContentRes struct {
	GeneratedContent string `json:"generatedContent"`
}

type GenerateContentRes struct {
	Captions map[string]string `json:"captions"`
	Hashtags []string          `json:"hashtags"`
	Fallback bool              `json:"fallback"`
}

type UpdateCaptionsReq struct {
	Captions map[string]string `json:"captions" binding:"required,dive,keys,oneof=facebook instagram tiktok,endkeys,max=5000"`
	Hashtags []string          `json:"hashtags" binding:"omitempty,max=30,dive,min=1,max=100"`
}
