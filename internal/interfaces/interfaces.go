package interfaces

import (
	"github.com/gin-gonic/gin"
)

type Usecase interface {
	CounterBadgeHandler(c *gin.Context)
	ForumCounterHandler(c *gin.Context)
	GetCounterHandler(c *gin.Context)
	CountryBreakdownHandler(c *gin.Context)
	TopCountriesHandler(c *gin.Context)
}
