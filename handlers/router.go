package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Dharsan2024/AudioCryptor/config"
)

// NewRouter wires the API routes and CORS policy.
func NewRouter(conf *config.Config, stegoHandler *StegoHandler) *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = conf.MaxUploadBytes()

	corsConfig := cors.DefaultConfig()
	if conf.AllowsAllOrigins() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = conf.AllowOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.ExposeHeaders = []string{"X-Stego-PSNR", "X-Stego-Capacity", "X-Stego-Payload", "Content-Disposition"}
	router.Use(cors.New(corsConfig))

	// API Routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", stegoHandler.HealthCheck)

		stego := api.Group("/stego")
		{
			stego.POST("/encode", stegoHandler.EncodeMessage)
			stego.POST("/decode", stegoHandler.DecodeMessage)
			stego.POST("/capacity", stegoHandler.Capacity)
			stego.POST("/analyze", stegoHandler.Analyze)
		}
	}

	return router
}
