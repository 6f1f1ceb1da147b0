package controller

import (
	"mandarin_edu_backend/internal/service"
	"mandarin_edu_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TTSController struct {
	ttsService *service.TTSService
}

func NewTTSController(ttsService *service.TTSService) *TTSController {
	return &TTSController{ttsService: ttsService}
}

type SynthesizeRequest struct {
	Text  string `json:"text" binding:"required"`
	Voice string `json:"voice"`
	Model string `json:"model"`
}

// Synthesize godoc
// @Summary 文本转语音
// @Description 合成给定中文文本的朗读音频，返回音频字节流
// @Tags tts
// @Accept json
// @Produce octet-stream
// @Param request body SynthesizeRequest true "合成参数"
// @Success 200 {file} binary "audio/mpeg"
// @Failure 400 {object} util.Response "Bad Request"
// @Failure 502 {object} util.Response "合成失败"
// @Router /tts/synthesize [post]
func (c *TTSController) Synthesize(ctx *gin.Context) {
	var req SynthesizeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	audio, err := c.ttsService.Synthesize(ctx.Request.Context(), req.Text, req.Voice, req.Model)
	if err != nil {
		util.Error(ctx, http.StatusBadGateway, err.Error())
		return
	}

	ctx.Data(http.StatusOK, "audio/mpeg", audio)
}
