package dto

type AuditoriaFilter struct {
	TipoAccion string `form:"tipo_accion"`
	UsuarioID  string `form:"usuario_id" validate:"omitempty,uuid"`
	Desde      string `form:"desde"`
	Hasta      string `form:"hasta"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type RegistroAuditoriaResponse struct {
	ID          string  `json:"id"`
	UsuarioID   *string `json:"usuario_id"`
	TipoAccion  string  `json:"tipo_accion"`
	Descripcion string  `json:"descripcion"`
	FechaAccion string  `json:"fecha_accion"`
	IPAddress   *string `json:"ip_address"`
}

type AuditoriaListResponse struct {
	Data  []RegistroAuditoriaResponse `json:"data"`
	Total int64                       `json:"total"`
	Page  int                         `json:"page"`
	Limit int                         `json:"limit"`
}
