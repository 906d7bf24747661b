package testutil

import (
	"context"
	"fmt"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Influx describes a disposable InfluxDB 2 instance.
type Influx struct {
	URL    string
	Org    string
	Bucket string
	Token  string
}

// StartInflux launches an InfluxDB 2.7 container initialised with an
// organisation, a bucket and an admin token. The cleanup function
// terminates the container.
func StartInflux(ctx context.Context) (Influx, func(), error) {
	db := Influx{Org: "mineguard", Bucket: "ingest", Token: "mineguard-test-token"}
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "mineguard",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "mineguard-password",
			"DOCKER_INFLUXDB_INIT_ORG":         db.Org,
			"DOCKER_INFLUXDB_INIT_BUCKET":      db.Bucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": db.Token,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return db, nil, err
	}
	cleanup := func() { _ = cont.Terminate(context.Background()) }

	host, err := cont.Host(ctx)
	if err != nil {
		cleanup()
		return db, nil, err
	}
	port, err := cont.MappedPort(ctx, "8086")
	if err != nil {
		cleanup()
		return db, nil, err
	}
	db.URL = fmt.Sprintf("http://%s:%s", host, port.Port())
	return db, cleanup, nil
}
