package envinit

import (
	"sync"

	"plughost/internal/bootstrap/envfile"
)

const dirName = "config/email"

var once sync.Once

func defaultEnv() []byte {
	return []byte(envfile.Header("Email module config") +
		// 策略：smtp | log | none
		"EMAIL_STRATEGY=log\n" +
		"\n# SMTP settings\n" +
		"SMTP_HOST=smtp.example.com\n" +
		"SMTP_PORT=587\n" +
		"SMTP_USERNAME=no-reply@example.com\n" +
		"SMTP_PASSWORD=your-password\n" +
		"SMTP_FROM=No Reply <no-reply@example.com>\n",
	)
}

func Init() {
	once.Do(func() {
		envfile.Init("email/envinit", envfile.BaseDir(), dirName, defaultEnv())
	})
}
