package ftppush

import (
	"github.com/sirupsen/logrus"

	"github.com/ngrsoftlab/ftppush/utils"
)

// CloseConnection closes conn, turning a failure or panic in the backend into a
// logged ErrConnectionCloseFailed. A nil conn is a no-op.
func CloseConnection(conn Connection, log logrus.FieldLogger) (err error) {
	if conn == nil {
		return nil
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	defer func() {
		if err != nil {
			err = utils.Classify(utils.ErrConnectionCloseFailed, "close", err)
			log.WithError(err).Error("connection closure FAILED")
		}
	}()
	defer utils.Recover("close connection", &err)

	return conn.Close()
}
