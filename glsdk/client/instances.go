package client

import (
	"fmt"
	"sync"

	"github.com/splitio/go-toolkit/v5/logging"
)

var instanceMutex sync.Mutex

// clientInstances counts the live clients per game id
var clientInstances = make(map[string]int)

func registerInstance(gameID string, logger logging.LoggerInterface) {
	instanceMutex.Lock()
	defer instanceMutex.Unlock()
	if current := clientInstances[gameID]; current > 0 {
		logger.Warning(fmt.Sprintf("Client Instantiation: You already have %d client(s) for game %s. We recommend keeping only one "+
			"instance of the client at all times and reusing it throughout your application.", current, gameID))
	}
	clientInstances[gameID]++
}

func removeInstance(gameID string) {
	instanceMutex.Lock()
	defer instanceMutex.Unlock()
	if clientInstances[gameID] <= 1 {
		delete(clientInstances, gameID)
		return
	}
	clientInstances[gameID]--
}
