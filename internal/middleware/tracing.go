package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelic opens a web transaction per request and notices server errors on
// it. A nil app disables tracing.
func NewRelic(app *newrelic.Application) gin.HandlerFunc {
	if app == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		name := c.FullPath()
		if name == "" {
			name = "NotFound"
		}
		txn := app.StartTransaction(c.Request.Method + " " + name)
		defer txn.End()

		txn.SetWebRequestHTTP(c.Request)
		c.Request = newrelic.RequestWithTransactionContext(c.Request, txn)

		c.Next()

		status := c.Writer.Status()
		txn.SetWebResponse(nil).WriteHeader(status)
		if id := GetRequestID(c); id != "" {
			txn.AddAttribute("request.id", id)
		}
		if status >= http.StatusInternalServerError {
			for _, e := range c.Errors {
				txn.NoticeError(nrpkgerrors.Wrap(e.Err))
			}
		}
	}
}
