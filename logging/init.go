package logging

import (
	"log"
	"os"

	"github.com/matrix-org/postguard/version"
)

func init() {
	log.SetOutput(os.Stdout)
	log.SetPrefix("[" + version.Name + "] ")
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds)

	log.Println("Version:", version.Revision)
}
