package kinetics_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestKinetics(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Kinetics Suite")
}
