package handlers

import "github.com/gin-gonic/gin"

// ok writes the success envelope with payload merged at the top level.
func ok(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
