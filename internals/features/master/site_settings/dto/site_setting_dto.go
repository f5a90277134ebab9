package dto

type UpsertSettingsRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1,dive,keys,required,max=80,endkeys"`
}
