package config

import (
	"github.com/ngrsoftlab/ftppush"
)

const localUser = "local"

// Endpoint returns the remote side shared by every request
func (c *Config) Endpoint() ftppush.Endpoint {
	user := c.Remote.User
	if user == "" && c.Remote.Local {
		user = localUser
	}
	return ftppush.Endpoint{
		Host:     c.Remote.Host,
		Port:     c.Remote.Port,
		User:     user,
		Password: c.Remote.Password,
		Timeout:  c.Timeout(),
		Secure:   c.Remote.UseSSH,
	}
}

// Requests builds one request per configured source file, in order.
// progress, when set, is called once per file so every transfer reports on its own.
func (c *Config) Requests(progress func(source string) ftppush.ProgressFunc) []ftppush.Request {
	ep := c.Endpoint()
	reqs := make([]ftppush.Request, 0, len(c.Transfer.SourceFiles))
	for _, f := range c.Transfer.SourceFiles {
		var report ftppush.ProgressFunc
		if progress != nil {
			report = progress(f)
		}
		reqs = append(reqs, ftppush.Request{
			SourcePath:               f,
			SourceBasePath:           c.Transfer.SourceDir,
			Endpoint:                 ep,
			RemoteDir:                c.Transfer.RemoteDir,
			DeleteLocalAfterUpload:   c.Transfer.DeleteLocal,
			RemoveExistingRemoteFile: c.Transfer.RemoveExisting,
			CreateRemoteDirIfMissing: c.Transfer.CreateRemoteDir,
			Progress:                 report,
		})
	}
	return reqs
}
