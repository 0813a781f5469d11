package stubbackend

func (s *Server) initRoutes() {
	public := s.APIMiddleware()
	private := s.APIMiddleware(s.RequireAuth())

	// AUTH
	s.RegisterRouteFunc("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), public...))

	// PROFILE
	s.RegisterRouteFunc("GET "+RouteProfile, ChainMiddleware(s.GetProfileHandler(), private...))
	s.RegisterRouteFunc("PUT "+RouteProfile, ChainMiddleware(s.UpdateProfileHandler(), private...))

	// GROUPS
	s.RegisterRouteFunc("GET "+RouteGroups, ChainMiddleware(s.ExploreGroupsHandler(), private...))
	s.RegisterRouteFunc("POST "+RouteGroups, ChainMiddleware(s.CreateGroupHandler(), private...))
	s.RegisterRouteFunc("GET "+RouteMyGroups, ChainMiddleware(s.MyGroupsHandler(), private...))
	s.RegisterRouteFunc("GET "+RouteMyAdminGroups, ChainMiddleware(s.MyAdminGroupsHandler(), private...))
	s.RegisterRouteFunc("POST "+RouteGroupJoin, ChainMiddleware(s.JoinGroupHandler(), private...))
	s.RegisterRouteFunc("POST "+RouteGroupLeave, ChainMiddleware(s.LeaveGroupHandler(), private...))

	// SESSIONS
	s.RegisterRouteFunc("GET "+RouteSessions, ChainMiddleware(s.ListSessionsHandler(), private...))
	s.RegisterRouteFunc("POST "+RouteSessions, ChainMiddleware(s.CreateSessionHandler(), private...))
	s.RegisterRouteFunc("GET "+RouteSessionDetail, ChainMiddleware(s.GetSessionHandler(), private...))
	s.RegisterRouteFunc("DELETE "+RouteSessionDetail, ChainMiddleware(s.DeleteSessionHandler(), private...))
}
